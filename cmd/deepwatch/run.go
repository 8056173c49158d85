package main

import (
	"io"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/reoring/deepwatch"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/metrics"
	"github.com/reoring/deepwatch/script"
	"github.com/reoring/deepwatch/value"
)

type runFlags struct {
	doc     string
	script  string
	config  string
	freeze  []string
	metrics bool
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run --doc FILE --script FILE",
		Short: "Replay a mutation script and print one JSON line per change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScript(cmd.OutOrStdout(), cmd.ErrOrStderr(), g, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.doc, "doc", "", "document to observe (JSON or YAML)")
	fl.StringVar(&f.script, "script", "", "mutation script (YAML or JSON)")
	fl.StringVar(&f.config, "config", "", "observer configuration file")
	fl.StringSliceVar(&f.freeze, "freeze", nil, "reject changes at or below these dotted paths")
	fl.BoolVar(&f.metrics, "metrics", false, "log the change counters when the script finishes")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

func runScript(stdout, stderr io.Writer, g *globalFlags, f *runFlags) error {
	var cfg deepwatch.Config
	if f.config != "" {
		var err error
		if cfg, err = deepwatch.LoadConfig(f.config); err != nil {
			return err
		}
	}
	logger, err := g.logger(stderr, cfg.Level())
	if err != nil {
		return err
	}
	doc, err := loadDoc(f.doc)
	if err != nil {
		return err
	}
	ops, err := script.Load(f.script)
	if err != nil {
		logIssues(logger, err)
		return err
	}

	reg := prometheus.NewRegistry()
	col := metrics.New("")
	if err := col.Register(reg); err != nil {
		return err
	}

	opts := cfg.Options()
	opts.Logger = logger
	opts.Recorder = col
	if len(f.freeze) > 0 {
		opts.OnValidate = freezer(f.freeze, opts.PathAsArray)
	}

	out := newEventWriter(stdout)
	root := deepwatch.Observe(doc, out.onChange, opts)
	logger.Info("observing", "doc", f.doc, "run", out.run, "ops", len(ops))

	_, runErr := script.Run(root, ops)
	if out.err != nil {
		return out.err
	}
	logger.Info("done", "run", out.run, "changes", out.seq)
	if f.metrics {
		logMetrics(logger, reg)
	}
	if runErr != nil {
		logIssues(logger, runErr)
		return runErr
	}
	return nil
}

// freezer rejects every change at or below one of paths.
func freezer(paths []string, asArray bool) deepwatch.ValidateFunc {
	frozen := make([]keypath.Path, len(paths))
	for i, s := range paths {
		frozen[i] = keypath.Parse(s, asArray)
	}
	return func(p keypath.Path, _, _ any, _ *deepwatch.ApplyData) bool {
		for _, fp := range frozen {
			if p.IsSubPath(fp) {
				return false
			}
		}
		return true
	}
}

type eventLine struct {
	ID       string          `json:"id"`
	Run      string          `json:"run"`
	Seq      int             `json:"seq"`
	Path     string          `json:"path"`
	Pointer  string          `json:"pointer"`
	Value    json.RawMessage `json:"value,omitempty"`
	Previous json.RawMessage `json:"previous,omitempty"`
	Method   string          `json:"method,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// eventWriter prints changes as JSON lines. Each line gets a ULID; the
// run id is shared by every line of one invocation.
type eventWriter struct {
	enc *json.Encoder
	run string
	seq int
	err error
}

func newEventWriter(w io.Writer) *eventWriter {
	return &eventWriter{enc: json.NewEncoder(w), run: uuid.NewString()}
}

func (w *eventWriter) onChange(p keypath.Path, v, previous any, apply *deepwatch.ApplyData) {
	if w.err != nil {
		return
	}
	w.seq++
	line := eventLine{
		ID:      ulid.Make().String(),
		Run:     w.run,
		Seq:     w.seq,
		Path:    p.String(),
		Pointer: keypath.Pointer(p),
	}
	fields := []field{{&line.Value, v}, {&line.Previous, previous}}
	if apply != nil {
		line.Method = apply.Name
		fields = append(fields, field{&line.Args, value.NewArray(apply.Args...)}, field{&line.Result, apply.Result})
	}
	for _, fd := range fields {
		if *fd.dst, w.err = encodeValue(fd.v); w.err != nil {
			return
		}
	}
	w.err = w.enc.Encode(line)
}

type field struct {
	dst *json.RawMessage
	v   any
}

// encodeValue renders v for an event line; undefined is left out.
func encodeValue(v any) (json.RawMessage, error) {
	if value.IsUndefined(v) {
		return nil, nil
	}
	return value.Encode(v)
}

func logIssues(logger *slog.Logger, err error) {
	iss, ok := script.AsIssues(err)
	if !ok {
		return
	}
	for _, it := range iss {
		attrs := []any{"op", it.Index, "path", it.Path, "code", it.Code}
		if it.Cause != nil {
			attrs = append(attrs, tint.Err(it.Cause))
		}
		logger.Warn(it.Message, attrs...)
	}
}

func logMetrics(logger *slog.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn("gather metrics", tint.Err(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName(), "value", m.GetCounter().GetValue()}
			for _, l := range m.GetLabel() {
				attrs = append(attrs, l.GetName(), l.GetValue())
			}
			logger.Info("counter", attrs...)
		}
	}
}
