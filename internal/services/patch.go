package services

import (
	"encoding/json"

	"logistics_manager/internal/schema"
)

// applyPatch merges a camelCase JSON body onto entity and returns the columns
// it touched. The merged entity is validated before anything is written.
func applyPatch(entity interface{}, body []byte, protected ...string) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, invalid("invalid JSON body: %v", err)
	}
	if len(raw) == 0 {
		return nil, invalid("empty update")
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	e, err := schema.For(entity)
	if err != nil {
		return nil, err
	}
	columns, err := e.Patch(keys, protected...)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, entity); err != nil {
		return nil, invalid("invalid field value: %v", err)
	}
	if err := Validate(entity); err != nil {
		return nil, err
	}
	return columns, nil
}
