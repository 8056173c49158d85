package keypath

import "strings"

// Dotted is a path kept as a single string with segments joined by Separator.
type Dotted string

func (p Dotted) Concat(k Key) Path {
	if k.IsZero() {
		return p
	}
	if p == "" {
		return Dotted(k.Name())
	}
	return p + Separator + Dotted(k.Name())
}

func (p Dotted) Initial() Path {
	i := strings.LastIndex(string(p), Separator)
	if i == -1 {
		return Dotted("")
	}
	return p[:i]
}

func (p Dotted) Last() Key {
	if p == "" {
		return Key{}
	}
	i := strings.LastIndex(string(p), Separator)
	if i == -1 {
		return K(string(p))
	}
	return K(string(p[i+1:]))
}

func (p Dotted) After(sub Path) Path {
	s := sub.String()
	if s == "" {
		return p
	}
	if len(s)+1 > len(p) {
		return Dotted("")
	}
	return p[len(s)+1:]
}

func (p Dotted) IsSubPath(sub Path) bool {
	s := sub.String()
	if len(p) < len(s) {
		return false
	}
	if string(p) == s || s == "" {
		return true
	}
	if strings.HasPrefix(string(p), s) {
		return string(p[len(s):len(s)+len(Separator)]) == Separator
	}
	return false
}

func (p Dotted) IsRoot() bool { return p == "" }

func (p Dotted) Walk(visit func(Key)) {
	if p == "" {
		return
	}
	s := string(p)
	for {
		i := strings.Index(s, Separator)
		if i == -1 {
			visit(K(s))
			return
		}
		visit(K(s[:i]))
		s = s[i+len(Separator):]
	}
}

func (p Dotted) Len() int {
	if p == "" {
		return 0
	}
	return strings.Count(string(p), Separator) + 1
}

func (p Dotted) Keys() []Key {
	var out []Key
	p.Walk(func(k Key) { out = append(out, k) })
	return out
}

func (p Dotted) String() string { return string(p) }
