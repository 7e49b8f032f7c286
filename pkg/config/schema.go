package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema generates a JSON Schema document describing Config, for editor
// tooling and the `corertd config schema` command.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
	}
	schema := reflector.Reflect(&Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "corert Configuration"
	schema.Description = "Configuration schema for the corert host process"
	return json.MarshalIndent(schema, "", "  ")
}
