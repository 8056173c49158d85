package deepwatch

import (
	"log/slog"

	"github.com/reoring/deepwatch/internal/cache"
	"github.com/reoring/deepwatch/internal/txn"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// observer holds the state shared by every Proxy of one observed root.
type observer struct {
	root     value.Container
	onChange ChangeFunc
	opts     Options
	cache    *cache.Cache
	log      *txn.Log
	logger   *slog.Logger
	rec      Recorder
}

// Observe wraps root and reports every change made through the returned
// Proxy, or through any Proxy read from it, to onChange. It returns nil
// when root is nil.
func Observe(root value.Container, onChange ChangeFunc, opts Options) *Proxy {
	if c, ok := value.Raw(root).(value.Container); ok {
		root = c
	}
	if root == nil {
		return nil
	}
	opts = opts.withDefaults()
	o := &observer{
		root:     root,
		onChange: onChange,
		opts:     opts,
		cache:    cache.New(opts.Equals),
		log:      txn.NewLog(opts.OnValidate != nil),
		logger:   opts.Logger,
		rec:      opts.Recorder,
	}
	px, _ := o.wrap(root, o.rootPath()).(*Proxy)
	return px
}

func (o *observer) rootPath() keypath.Path { return keypath.Root(o.opts.PathAsArray) }

// wrap returns the Proxy of v recorded at p. The root always stays at the
// root path, wherever a back-reference to it is read.
func (o *observer) wrap(v value.Container, p keypath.Path) any {
	if v == o.root {
		p = o.rootPath()
	}
	return o.cache.GetProxy(v, p, func(h cache.Handle) any {
		return &Proxy{obs: o, handle: h, target: v}
	})
}

// pathOf returns the last recorded path of v. A value removed from the tree
// keeps the path it was removed from; only an untracked value falls back to
// the root path.
func (o *observer) pathOf(v value.Container) keypath.Path {
	if p, ok := o.cache.Path(v); ok {
		return p
	}
	return o.rootPath()
}

func (o *observer) torn() bool { return o.cache.IsUnsubscribed() }

// ignored reports whether changes and reads of k bypass observation.
func (o *observer) ignored(k keypath.Key) (string, bool) {
	switch {
	case o.torn():
		return ReasonTeardown, true
	case o.opts.IgnoreSymbols && k.IsSymbol():
		return ReasonSymbol, true
	case o.opts.IgnoreUnderscores && !k.IsSymbol() && len(k.Name()) > 0 && k.Name()[0] == '_':
		return ReasonUnderscore, true
	case o.opts.ignores(k):
		return ReasonDenylist, true
	}
	return "", false
}

func (o *observer) detached(target value.Container) bool {
	return o.opts.IgnoreDetached && o.cache.IsDetached(target, o.root)
}

// prepare returns v wrapped at basePath.k when it qualifies for wrapping,
// and v itself otherwise. A value reappearing below its canonical path is
// wrapped at the canonical path.
func (o *observer) prepare(v any, target value.Container, k keypath.Key, basePath keypath.Path) any {
	if _, ok := v.(*Proxy); ok {
		return v
	}
	c, ok := v.(value.Container)
	if !ok || !value.IsObservable(c) || o.opts.IsShallow {
		return v
	}
	if _, skip := o.ignored(k); skip {
		return v
	}
	if o.cache.IsGetInvariant(target, k) || o.detached(target) {
		return v
	}
	if basePath == nil {
		basePath = o.pathOf(target)
	}
	child := basePath.Concat(k)
	if existing, ok := o.cache.CanonicalPath(c); ok && keypath.IsSameTree(child, existing) {
		child = existing
	}
	return o.wrap(c, child)
}

func (o *observer) unsubscribe() {
	if !o.cache.Unsubscribe() {
		return
	}
	o.rec.TornDown()
	o.logger.Debug("observer unsubscribed")
}
