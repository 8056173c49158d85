package value

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/reoring/deepwatch/internal/engine"
	"github.com/reoring/deepwatch/keypath"
)

// DecodeOptions controls document decoding.
type DecodeOptions struct {
	// MaxDepth bounds container nesting; zero means unlimited.
	MaxDepth int
	// RejectDuplicates fails on repeated object keys. Otherwise the last
	// occurrence wins and keeps the position of the first.
	RejectDuplicates bool
	// Tagged converts single-key tag objects ({"$date": ...}, {"$set": ...},
	// {"$map": ...}, {"$bytes": ...}, {"$weakset": ...}, {"$weakmap": ...})
	// into the corresponding kinds.
	Tagged bool
}

// ParseJSON decodes a JSON document with tags enabled.
func ParseJSON(data []byte) (any, error) {
	return DecodeJSON(bytes.NewReader(data), DecodeOptions{Tagged: true})
}

// DecodeJSON decodes one JSON document from r into objects, arrays and
// primitives. Numbers decode as float64 and key order is preserved.
func DecodeJSON(r io.Reader, opts DecodeOptions) (any, error) {
	lim := engine.Limits{MaxDepth: opts.MaxDepth}
	if opts.RejectDuplicates {
		lim.OnDuplicate = engine.DupError
	}
	src := engine.WithLimits(engine.NewReader(r), lim)
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	d := decoder{src: src, tagged: opts.Tagged}
	return d.value(tok)
}

type decoder struct {
	src    engine.TokenSource
	tagged bool
}

func (d *decoder) next() (engine.Token, error) {
	tok, err := d.src.NextToken()
	if errors.Is(err, io.EOF) {
		return tok, io.ErrUnexpectedEOF
	}
	return tok, err
}

func (d *decoder) value(tok engine.Token) (any, error) {
	switch tok.Kind {
	case engine.KindBeginObject:
		return d.object()
	case engine.KindBeginArray:
		return d.array()
	case engine.KindString:
		return tok.String, nil
	case engine.KindNumber:
		return strconv.ParseFloat(tok.Number, 64)
	case engine.KindBool:
		return tok.Bool, nil
	case engine.KindNull:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected %s token", tok.Kind)
}

func (d *decoder) object() (any, error) {
	o := NewObject()
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == engine.KindEndObject {
			if d.tagged {
				return Untag(o)
			}
			return o, nil
		}
		if tok.Kind != engine.KindKey {
			return nil, fmt.Errorf("unexpected %s token in object", tok.Kind)
		}
		vt, err := d.next()
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt)
		if err != nil {
			return nil, err
		}
		o.SetOwn(keypath.K(tok.String), v)
	}
}

func (d *decoder) array() (any, error) {
	a := NewArray()
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == engine.KindEndArray {
			return a, nil
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		a.Push(v)
	}
}

// Tag names recognised by Untag.
const (
	TagDate    = "$date"
	TagSet     = "$set"
	TagMap     = "$map"
	TagBytes   = "$bytes"
	TagWeakSet = "$weakset"
	TagWeakMap = "$weakmap"
)

// Untag converts a single-key tag object into the kind it names. Objects
// that are not tags are returned unchanged.
func Untag(o *Object) (any, error) {
	if o.Len() != 1 {
		return o, nil
	}
	k := o.keys[0]
	body, _ := o.GetOwn(k)
	switch k.Name() {
	case TagDate:
		return dateFromTag(body)
	case TagSet, TagWeakSet:
		elems, ok := body.(*Array)
		if !ok {
			return nil, fmt.Errorf("%s: expected array, got %s", k.Name(), KindOf(body))
		}
		if k.Name() == TagSet {
			return NewSet(elems.elems...), nil
		}
		return NewWeakSet(elems.elems...), nil
	case TagMap, TagWeakMap:
		pairs, err := entriesFromTag(k.Name(), body)
		if err != nil {
			return nil, err
		}
		if k.Name() == TagMap {
			return NewMap(pairs...), nil
		}
		return NewWeakMap(pairs...), nil
	case TagBytes:
		s, ok := body.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected base64 string", TagBytes)
		}
		buf, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TagBytes, err)
		}
		return NewBytes(buf), nil
	}
	return o, nil
}

func dateFromTag(body any) (any, error) {
	switch t := body.(type) {
	case nil:
		return DateFromMillis(nanMillis()), nil
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TagDate, err)
		}
		return NewDate(ts), nil
	}
	if ms, ok := toNumber(body); ok {
		return DateFromMillis(ms), nil
	}
	return nil, fmt.Errorf("%s: expected RFC 3339 string or milliseconds", TagDate)
}

func entriesFromTag(tag string, body any) ([]Entry, error) {
	list, ok := body.(*Array)
	if !ok {
		return nil, fmt.Errorf("%s: expected array of pairs, got %s", tag, KindOf(body))
	}
	out := make([]Entry, 0, list.Len())
	for i, e := range list.elems {
		pair, ok := e.(*Array)
		if !ok || pair.Len() != 2 {
			return nil, fmt.Errorf("%s: entry %d is not a [key, value] pair", tag, i)
		}
		out = append(out, Entry{Key: pair.elems[0], Value: pair.elems[1]})
	}
	return out, nil
}
