package keypath

// Parent is implemented by values whose children are addressable by key.
type Parent interface {
	Child(k Key) (any, bool)
}

// Resolve walks p from root and returns the value found there. The second
// result is false when a segment does not resolve.
func Resolve(root any, p Path) (any, bool) {
	cur, ok := root, true
	if p == nil {
		return nil, false
	}
	p.Walk(func(k Key) {
		if !ok {
			return
		}
		parent, isParent := cur.(Parent)
		if !isParent {
			cur, ok = nil, false
			return
		}
		cur, ok = parent.Child(k)
	})
	return cur, ok
}
