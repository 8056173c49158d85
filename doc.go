// Package deepwatch observes deep mutations of a value graph.
//
// Observe wraps a root container and returns a Proxy that reads like the
// original value and reports every change anywhere in the reachable graph
// through one callback:
//
// - Property writes, definitions and deletions at any depth
// - Mutating method calls (push, splice, sort, Map.set, Set.add, Date setters, ...)
// reported as one batched change carrying the call's name, arguments and result
// - Validation hooks that can veto a change; rejected bulk calls are rolled back
// - Suppression rules for symbol, underscore-prefixed, denylisted and detached keys
//
// Design policy:
// - Values are explicit reference kinds from package value; the keypath package
// addresses them.
// - Wrappers are memoized per value, so repeated reads of a path return the same
// Proxy until the value moves.
// - Delivery is synchronous and ordered; handlers may mutate the graph again.
//
// Related packages: metrics exports Recorder hooks as Prometheus counters,
// script replays YAML mutation scripts through a Proxy, and cmd/deepwatch
// wraps both in a CLI. Config loads Options from a YAML file.
//
// Typical usage:
//
//	doc, _ := value.ParseJSON([]byte(`{"list":[1,2,3]}`))
//	obj := deepwatch.Observe(doc.(value.Container), func(p keypath.Path, v, prev any, apply *deepwatch.ApplyData) {
//		if apply != nil {
//			fmt.Println(p, apply.Name)
//			return
//		}
//		fmt.Println(p, prev, "->", v)
//	}, deepwatch.Options{})
//	obj.Get("list").(*deepwatch.Proxy).Call("push", 4.0)
//
//	deepwatch.Unsubscribe(obj)
package deepwatch
