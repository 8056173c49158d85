package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/deepwatch"
	"github.com/reoring/deepwatch/jsonschema"
	"github.com/reoring/deepwatch/script"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema {script|config}",
		Short:     "Print the JSON Schema of the script or configuration format",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"script", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var s *jsonschema.Schema
			switch args[0] {
			case "script":
				s = script.Schema()
			case "config":
				s = deepwatch.ConfigSchema()
			default:
				return fmt.Errorf("unknown schema %q", args[0])
			}
			b, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}
