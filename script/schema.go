package script

import "github.com/reoring/deepwatch/jsonschema"

// Schema describes the script format for editors and linters.
func Schema() *jsonschema.Schema {
	op := jsonschema.Object(map[string]*jsonschema.Schema{
		"op":           jsonschema.Enum("Operation kind.", OpSet, OpDelete, OpDefine, OpCall, OpUnsubscribe),
		"path":         jsonschema.String("Dotted path of the property, or of the receiver for call."),
		"method":       jsonschema.String("Method invoked by call."),
		"args":         jsonschema.ArrayOf("Arguments passed by call.", jsonschema.Any("Argument; {\"$ref\": path} names an existing value.")),
		"value":        jsonschema.Any("Value written by set and define; {\"$ref\": path} names an existing value."),
		"writable":     jsonschema.Bool("Descriptor flag used by define.", true),
		"enumerable":   jsonschema.Bool("Descriptor flag used by define.", true),
		"configurable": jsonschema.Bool("Descriptor flag used by define.", true),
	}, "op").Requires("op", OpCall, "method")
	return jsonschema.Document("deepwatch mutation script", jsonschema.ArrayOf("Operations applied in order.", op))
}
