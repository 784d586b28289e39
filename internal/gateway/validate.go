// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// scenarioJSONSchema mirrors scenarioListSchema as a JSON Schema document.
// The API usually honors the response schema, but it is not a guarantee.
var scenarioJSONSchema = map[string]any{
	"type":     "array",
	"minItems": 1,
	"items": map[string]any{
		"type":     "object",
		"required": []any{"name", "steps"},
		"properties": map[string]any{
			"id":                map[string]any{"type": "string"},
			"name":              map[string]any{"type": "string", "minLength": 1},
			"description":       map[string]any{"type": "string"},
			"recoveryRate":      map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"capexEstimate":     map[string]any{"type": "string"},
			"opexEstimate":      map[string]any{"type": "string"},
			"energyConsumption": map[string]any{"type": "number", "minimum": 0},
			"risks":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"steps": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"name", "type"},
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"type":        map[string]any{"enum": []any{"Pretreatment", "Membrane", "Thermal", "SolidHandling"}},
						"description": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func scenarioSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// Round-trip through JSON so numbers have the types the compiler expects.
		raw, err := json.Marshal(scenarioJSONSchema)
		if err != nil {
			compileErr = fmt.Errorf("serializing scenario schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parsing scenario schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("scenarios.json", doc); err != nil {
			compileErr = fmt.Errorf("adding scenario schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("scenarios.json")
	})
	return compiledSchema, compileErr
}

// validateScenarios checks raw JSON against scenarioJSONSchema.
func validateScenarios(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("scenario reply is not valid JSON: %w", err)
	}

	schema, err := scenarioSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("scenario reply does not match schema: %w", err)
	}
	return nil
}
