// Command deepwatch replays mutation scripts against a JSON or YAML
// document and prints every observed change as a JSON line.
//
// Usage:
//
//	deepwatch run --doc doc.yaml --script ops.yaml [--config observe.yaml]
//	deepwatch paths --doc doc.yaml [--format dotted|segments|pointer]
//	deepwatch schema script|config
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "deepwatch:", err)
		os.Exit(1)
	}
}
