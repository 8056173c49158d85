package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/reoring/deepwatch/i18n"
	"github.com/reoring/deepwatch/value"
)

type globalFlags struct {
	logLevel string
	noColor  bool
	lang     string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "deepwatch",
		Short:         "Observe mutations of a JSON or YAML document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch g.lang {
			case "en", "ja":
			default:
				return fmt.Errorf("unsupported language %q", g.lang)
			}
			i18n.SetLanguage(g.lang)
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored log output")
	pf.StringVar(&g.lang, "lang", "en", "language of issue messages (en, ja)")

	cmd.AddCommand(newRunCmd(g), newPathsCmd(), newSchemaCmd())
	return cmd
}

// logger builds the tint handler used by every subcommand. Color is only
// emitted to terminals.
func (g *globalFlags) logger(w io.Writer, fallback slog.Level) (*slog.Logger, error) {
	level := fallback
	if g.logLevel != "" {
		if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
	}
	noColor := g.noColor
	if f, ok := w.(*os.File); ok {
		noColor = noColor || !isatty.IsTerminal(f.Fd())
		w = colorable.NewColorable(f)
	} else {
		noColor = true
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})), nil
}

// loadDoc reads a document. Files ending in .json are decoded as JSON,
// anything else as YAML; both accept the tagged forms for dates and
// collections.
func loadDoc(path string) (value.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		v, err = value.ParseJSON(data)
	} else {
		v, err = value.ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c, ok := v.(value.Container)
	if !ok {
		return nil, fmt.Errorf("%s: document root must be a container, got %s", path, value.KindOf(v))
	}
	return c, nil
}
