package library

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed library.schema.json
var schemaJSON []byte

// Validate checks a library YAML document against the embedded JSON
// Schema before it is parsed into a Set, catching malformed metadata
// (missing names, out-of-range indices) with a precise error instead of a
// zero-valued Library silently resolving nothing.
func Validate(yamlDoc []byte) error {
	var generic any
	if err := yaml.Unmarshal(yamlDoc, &generic); err != nil {
		return fmt.Errorf("library: decode yaml for validation: %w", err)
	}

	asJSON, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("library: re-marshal yaml as json: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	docLoader := gojsonschema.NewBytesLoader(asJSON)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("library: schema validation error: %w", err)
	}
	if !result.Valid() {
		msg := "library: document does not conform to schema:"
		for _, e := range result.Errors() {
			msg += "\n  - " + e.String()
		}
		return errors.New(msg)
	}
	return nil
}

// LoadValidated loads a library YAML document, validating it against the
// embedded schema before parsing.
func LoadValidated(yamlDoc []byte) (*Set, error) {
	if err := Validate(yamlDoc); err != nil {
		return nil, err
	}
	return LoadFromReader(bytes.NewReader(yamlDoc))
}
