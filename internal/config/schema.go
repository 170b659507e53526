package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tailscale/hujson"
	"sigs.k8s.io/yaml"
)

const schemaResource = "config.schema.json"

//go:embed config.schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaResource, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaResource)
})

// normalize turns a HuJSON, JSON or YAML document into standard JSON.
// Comments and trailing commas are accepted in JSON files.
func normalize(data []byte) ([]byte, error) {
	if std, err := hujson.Standardize(bytes.Clone(data)); err == nil {
		return std, nil
	}
	return yaml.YAMLToJSON(data)
}

// validateSchema checks the document structure: known keys and value types.
// Semantic checks live in Config.Validate.
func validateSchema(doc []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return err
	}
	return schema.Validate(inst)
}
