package agent

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ResultSchema returns the JSON Schema of the Result wire shape.
func ResultSchema() ([]byte, error) {
	return reflectSchema(&Result{}, "Translation result")
}

// RequestSchema returns the JSON Schema of the Request wire shape.
func RequestSchema() ([]byte, error) {
	return reflectSchema(&Request{}, "Translation request")
}

func reflectSchema(v any, title string) ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	s := r.Reflect(v)
	s.Title = title
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s schema: %w", title, err)
	}
	return data, nil
}
