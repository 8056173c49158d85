package deepwatch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/reoring/deepwatch/jsonschema"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Equality predicates selectable from configuration.
const (
	EqualitySameValue     = "same-value"
	EqualitySameValueZero = "same-value-zero"
	EqualityStrict        = "strict"
)

// DetailsWildcard in Config.Details selects every method.
const DetailsWildcard = "*"

// Config is the file form of Options.
//
//	pathAsArray: false
//	ignoreUnderscores: true
//	ignoreKeys: [secret]
//	details: [sort]
//	equality: same-value
type Config struct {
	PathAsArray       bool     `yaml:"pathAsArray"`
	Shallow           bool     `yaml:"shallow"`
	IgnoreSymbols     bool     `yaml:"ignoreSymbols"`
	IgnoreUnderscores bool     `yaml:"ignoreUnderscores"`
	IgnoreKeys        []string `yaml:"ignoreKeys" validate:"dive,required"`
	IgnoreDetached    bool     `yaml:"ignoreDetached"`
	Details           []string `yaml:"details" validate:"dive,required"`
	Equality          string   `yaml:"equality" validate:"omitempty,oneof=same-value same-value-zero strict"`
	LogLevel          string   `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
}

var configValidate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("deepwatch: invalid config: %w", err)
	}
	return nil
}

// ParseConfig decodes and validates a YAML (or JSON) configuration. Unknown
// fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("deepwatch: parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("deepwatch: read config: %w", err)
	}
	return ParseConfig(data)
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if c.LogLevel == "" || l.UnmarshalText([]byte(c.LogLevel)) != nil {
		return slog.LevelInfo
	}
	return l
}

// Options converts the configuration. Hooks, logger and recorder are left
// for the caller to set.
func (c Config) Options() Options {
	o := Options{
		IsShallow:         c.Shallow,
		PathAsArray:       c.PathAsArray,
		IgnoreSymbols:     c.IgnoreSymbols,
		IgnoreUnderscores: c.IgnoreUnderscores,
		IgnoreDetached:    c.IgnoreDetached,
		IgnoreKeys:        keypath.Keys(c.IgnoreKeys...),
	}
	switch c.Equality {
	case EqualitySameValueZero:
		o.Equals = value.SameValueZero
	case EqualityStrict:
		o.Equals = value.StrictEqual
	default:
		o.Equals = value.SameValue
	}
	for _, d := range c.Details {
		if d == DetailsWildcard {
			o.Details = DetailsAll()
			return o
		}
	}
	if len(c.Details) > 0 {
		o.Details = DetailsFor(c.Details...)
	}
	return o
}

// ConfigSchema describes the configuration file.
func ConfigSchema() *jsonschema.Schema {
	return jsonschema.Document("deepwatch observer configuration", jsonschema.Object(map[string]*jsonschema.Schema{
		"pathAsArray":       jsonschema.Bool("Report paths as key sequences instead of dotted strings.", false),
		"shallow":           jsonschema.Bool("Observe only the root's own properties.", false),
		"ignoreSymbols":     jsonschema.Bool("Skip symbol-keyed properties.", false),
		"ignoreUnderscores": jsonschema.Bool("Skip properties whose name starts with an underscore.", false),
		"ignoreKeys":        jsonschema.ArrayOf("Property names never observed.", jsonschema.String("")),
		"ignoreDetached":    jsonschema.Bool("Skip changes to values no longer reachable from the root.", false),
		"details":           jsonschema.ArrayOf("Methods reported field by field; \"*\" selects all.", jsonschema.String("")),
		"equality":          jsonschema.Enum("Equality used to skip no-op writes.", EqualitySameValue, EqualitySameValueZero, EqualityStrict),
		"logLevel":          jsonschema.Enum("Log level.", "debug", "info", "warn", "error"),
	}))
}
