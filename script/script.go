// Package script replays mutation scripts against an observed value.
//
// A script is a YAML or JSON list of operations applied in order through
// the root Proxy:
//
//	- {op: set, path: user.name, value: Ada}
//	- {op: call, path: user.tags, method: push, args: [admin]}
//	- {op: define, path: user.id, value: 7, writable: false}
//	- {op: delete, path: user.name}
//	- {op: set, path: user.self, value: {$ref: user}}
//	- {op: unsubscribe}
//
// Values use the tagged forms understood by value.ParseJSON ({$date: ...},
// {$set: [...]}, {$map: [[k, v]]}, ...). A {$ref: path} object stands for
// the value currently found at path, which makes cyclic graphs expressible.
package script

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/reoring/deepwatch/i18n"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Operation kinds.
const (
	OpSet         = "set"
	OpDelete      = "delete"
	OpDefine      = "define"
	OpCall        = "call"
	OpUnsubscribe = "unsubscribe"
)

// RefTag marks a reference to an existing value.
const RefTag = "$ref"

// Op is one scripted operation. For set, delete and define Path names the
// property; for call it names the receiver.
type Op struct {
	Kind   string `validate:"required"`
	Path   string
	Method string `validate:"required_if=Kind call"`
	Args   []any
	Value  any
	// Descriptor flags used by define.
	Writable     bool
	Enumerable   bool
	Configurable bool
}

var opValidate = validator.New()

// Load reads and parses a script file.
func Load(path string) ([]Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a script. Structural problems are reported as Issues.
func Parse(data []byte) ([]Op, error) {
	doc, err := value.ParseYAML(data)
	if err != nil {
		return nil, Issues{{Index: -1, Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
	}
	if doc == nil {
		return nil, nil
	}
	list, ok := doc.(*value.Array)
	if !ok {
		return nil, Issues{invalid(-1, "/", fmt.Errorf("script must be a list, got %s", value.KindOf(doc)))}
	}
	var (
		ops []Op
		iss Issues
	)
	for i, e := range list.Elements() {
		o, ok := e.(*value.Object)
		if !ok {
			iss = AppendIssues(iss, invalid(i, "/", fmt.Errorf("operation must be a mapping, got %s", value.KindOf(e))))
			continue
		}
		op, err := decodeOp(o)
		if err == nil {
			err = opValidate.Struct(op)
		}
		if err != nil {
			iss = AppendIssues(iss, invalid(i, pointer(op.Path), err))
			continue
		}
		ops = append(ops, op)
	}
	if len(iss) > 0 {
		return ops, iss
	}
	return ops, nil
}

func invalid(i int, path string, cause error) Issue {
	return Issue{Index: i, Path: path, Code: CodeInvalidValue, Message: i18n.T(CodeInvalidValue, nil), Cause: cause}
}

func pointer(path string) string { return keypath.Pointer(keypath.Parse(path, true)) }

var opFields = map[string]struct{}{
	"op": {}, "path": {}, "method": {}, "args": {}, "value": {},
	"writable": {}, "enumerable": {}, "configurable": {},
}

func decodeOp(o *value.Object) (Op, error) {
	op := Op{Writable: true, Enumerable: true, Configurable: true}
	for _, k := range o.OwnKeys() {
		if _, ok := opFields[k.Name()]; !ok {
			return op, fmt.Errorf("unknown field %q", k.Name())
		}
	}
	str := func(name string, dst *string) error {
		v, ok := o.GetOwn(keypath.K(name))
		if !ok {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %s", name, value.KindOf(v))
		}
		*dst = s
		return nil
	}
	flag := func(name string, dst *bool) error {
		v, ok := o.GetOwn(keypath.K(name))
		if !ok {
			return nil
		}
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%s: expected bool", name)
		}
		*dst = b
		return nil
	}
	for _, err := range []error{
		str("op", &op.Kind),
		str("path", &op.Path),
		str("method", &op.Method),
		flag("writable", &op.Writable),
		flag("enumerable", &op.Enumerable),
		flag("configurable", &op.Configurable),
	} {
		if err != nil {
			return op, err
		}
	}
	if v, ok := o.GetOwn(keypath.K("args")); ok {
		args, ok := v.(*value.Array)
		if !ok {
			return op, fmt.Errorf("args: expected list, got %s", value.KindOf(v))
		}
		op.Args = args.Elements()
	}
	if v, ok := o.GetOwn(keypath.K("value")); ok {
		op.Value = v
	} else {
		op.Value = value.Undefined
	}
	return op, nil
}
