package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

const (
	formatDotted   = "dotted"
	formatSegments = "segments"
	formatPointer  = "pointer"
)

func newPathsCmd() *cobra.Command {
	var doc, format string
	cmd := &cobra.Command{
		Use:   "paths --doc FILE",
		Short: "List the path of every value in a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case formatDotted, formatSegments, formatPointer:
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			root, err := loadDoc(doc)
			if err != nil {
				return err
			}
			return listPaths(cmd.OutOrStdout(), root, format)
		},
	}
	cmd.Flags().StringVar(&doc, "doc", "", "document to inspect (JSON or YAML)")
	cmd.Flags().StringVar(&format, "format", formatDotted, "path rendering: dotted, segments or pointer")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}

type child struct {
	key keypath.Key
	v   any
}

// listPaths prints the path of every value below root in document order.
// A container reached again through a back-reference is listed but not
// descended into.
func listPaths(w io.Writer, root value.Container, format string) error {
	bw := bufio.NewWriter(w)
	var (
		stack []value.Container
		walk  func(c value.Container, p keypath.Path) error
	)
	walk = func(c value.Container, p keypath.Path) error {
		if slices.Contains(stack, c) {
			return nil
		}
		stack = append(stack, c)
		defer func() { stack = stack[:len(stack)-1] }()
		for _, ch := range children(c) {
			cp := p.Concat(ch.key)
			if err := writePath(bw, cp, format); err != nil {
				return err
			}
			if cc, ok := ch.v.(value.Container); ok {
				if err := walk(cc, cp); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(root, keypath.Root(true)); err != nil {
		return err
	}
	return bw.Flush()
}

func children(c value.Container) []child {
	var out []child
	switch t := c.(type) {
	case *value.Map:
		for _, e := range t.Entries() {
			out = append(out, child{memberKey(e.Key), e.Value})
		}
	case *value.Set:
		for _, m := range t.Values() {
			out = append(out, child{memberKey(m), m})
		}
	default:
		for _, k := range value.EnumerableKeys(c) {
			if k.IsSymbol() {
				continue
			}
			v, _ := c.GetOwn(k)
			out = append(out, child{k, v})
		}
	}
	return out
}

// memberKey names a collection member the way observed paths do.
func memberKey(v any) keypath.Key {
	if c, ok := v.(value.Container); ok {
		return keypath.K(value.ToString(c))
	}
	return keypath.KeyOf(v)
}

func writePath(w io.Writer, p keypath.Path, format string) error {
	var line string
	switch format {
	case formatPointer:
		line = keypath.Pointer(p)
	case formatSegments:
		names := make([]string, 0, p.Len())
		p.Walk(func(k keypath.Key) { names = append(names, k.Name()) })
		b, err := json.Marshal(names)
		if err != nil {
			return err
		}
		line = string(b)
	default:
		line = p.String()
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
