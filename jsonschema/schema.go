// Package jsonschema models the subset of JSON Schema used to describe
// deepwatch's file formats (observer configuration and mutation scripts).
package jsonschema

// Draft is the dialect emitted by Document.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a JSON Schema node.
type Schema struct {
	Schema      string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Core
	Type    any    `json:"type,omitempty"`
	Enum    []any  `json:"enum,omitempty"`
	Default any    `json:"default,omitempty"`
	Format  string `json:"format,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Conditionals
	AllOf []*Schema `json:"allOf,omitempty"`
	If    *Schema   `json:"if,omitempty"`
	Then  *Schema   `json:"then,omitempty"`
}

// Document marks s as a top-level schema with title.
func Document(title string, s *Schema) *Schema {
	s.Schema = Draft
	s.Title = title
	return s
}

// String returns a string schema.
func String(desc string) *Schema { return &Schema{Type: "string", Description: desc} }

// Bool returns a boolean schema with a default.
func Bool(desc string, def bool) *Schema {
	return &Schema{Type: "boolean", Description: desc, Default: def}
}

// Enum returns a string schema restricted to values.
func Enum(desc string, values ...string) *Schema {
	s := String(desc)
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return s
}

// ArrayOf returns an array schema with items.
func ArrayOf(desc string, items *Schema) *Schema {
	return &Schema{Type: "array", Description: desc, Items: items}
}

// Object returns a closed object schema.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required, AdditionalProperties: false}
}

// Any accepts every JSON value.
func Any(desc string) *Schema { return &Schema{Description: desc} }

// Requires adds a conditional requirement: when prop equals value, the
// fields in required must be present.
func (s *Schema) Requires(prop, value string, required ...string) *Schema {
	s.AllOf = append(s.AllOf, &Schema{
		If: &Schema{
			Properties: map[string]*Schema{prop: {Enum: []any{value}}},
			Required:   []string{prop},
		},
		Then: &Schema{Required: required},
	})
	return s
}
