package search

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

const inputSchema = `{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"minLength": 1,
			"description": "The search query"
		}
	},
	"required": ["query"]
}`

// Input is the argument object of search_web.
type Input struct {
	Query string `json:"query"`
}

// InputSchema returns the JSON Schema of Input.
func InputSchema() json.RawMessage {
	return json.RawMessage(inputSchema)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.NewCompiler().Compile([]byte(inputSchema))
})

// ParseInput validates raw tool arguments against InputSchema and decodes
// them. Failures wrap ErrInvalidInput.
func ParseInput(raw []byte) (Input, error) {
	schema, err := compiledSchema()
	if err != nil {
		return Input{}, fmt.Errorf("compile input schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if result := schema.Validate(doc); !result.IsValid() {
		return Input{}, fmt.Errorf("%w: %s", ErrInvalidInput, result.Error())
	}

	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return in, nil
}
