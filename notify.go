package deepwatch

import (
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// suppressed applies the routing filters to a change of target[k] and
// records the reason a change was dropped.
func (o *observer) suppressed(target value.Container, k keypath.Key) bool {
	reason, skip := o.ignored(k)
	if !skip && o.detached(target) {
		reason, skip = ReasonDetached, true
	}
	if skip {
		o.rec.Suppressed(reason)
		o.logger.Debug("change suppressed", "reason", reason, "key", k.String())
	}
	return skip
}

// validate consults the validation hook. Writes made while a call is being
// batched are accepted unconditionally; the call validates once when it
// completes.
func (o *observer) validate(op string, base keypath.Path, k keypath.Key, v, previous any, apply *ApplyData) bool {
	if o.opts.OnValidate == nil || o.log.IsCloning() {
		return true
	}
	p := base.Concat(k)
	if o.opts.OnValidate(p, v, previous, apply) {
		return true
	}
	o.rec.Rejected(op)
	o.logger.Debug("change rejected", "op", op, "path", p.String())
	return false
}

// route folds a change into the innermost open call when it falls inside
// the call's receiver, and delivers it otherwise.
func (o *observer) route(op string, base keypath.Path, k keypath.Key, v, previous any, apply *ApplyData) {
	if o.log.IsCloning() && o.log.IsPartOfClone(base) {
		o.log.Update(base, k, previous)
		return
	}
	p := base.Concat(k)
	o.rec.Notified(op)
	o.logger.Debug("change", "op", op, "path", p.String())
	if o.onChange != nil {
		o.onChange(p, v, previous, apply)
	}
}
