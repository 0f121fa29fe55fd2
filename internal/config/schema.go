package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var configSchema string

// SchemaPredicate returns a ValidationPredicate that validates the loaded
// configuration against the embedded JSON schema. Structural validation in
// validate() covers required fields; the schema additionally pins types and
// rejects unexpected shapes produced by hand-edited files.
func SchemaPredicate() ValidationPredicate {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)

	return func(cfg *Config) error {
		data, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("%w: cannot serialize config for schema validation: %w", ErrInvalidValue, err)
		}

		result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
		if err != nil {
			return fmt.Errorf("%w: schema validation error: %w", ErrInvalidValue, err)
		}

		if !result.Valid() {
			msgs := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				msgs = append(msgs, desc.String())
			}
			return fmt.Errorf("%w: config does not match schema: %s", ErrInvalidValue, strings.Join(msgs, "; "))
		}

		return nil
	}
}
