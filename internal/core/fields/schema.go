package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

// BuildRecordJSONSchema returns the JSON Schema of dt's record: every field
// required, strings or null, and the member list as an array of
// name/nationalId objects.
func BuildRecordJSONSchema(dt constants.DocType) map[string]any {
	keys := For(dt).Fields()
	props := make(map[string]any, len(keys))
	for _, k := range keys {
		if k == membersField {
			props[k] = map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"name", "nationalId"},
					"properties": map[string]any{
						"name":       map[string]any{"type": "string", "minLength": 1},
						"nationalId": map[string]any{"type": "string", "pattern": `^\d{16}$`},
					},
				},
			}
			continue
		}
		props[k] = map[string]any{"type": []any{"string", "null"}}
	}
	required := make([]any, len(keys))
	for i, k := range keys {
		required[i] = k
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"required":             required,
		"properties":           props,
	}
}

var (
	schemaMu sync.Mutex
	schemas  = map[constants.DocType]*jsonschema.Schema{}
)

func compiledSchema(dt constants.DocType) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := schemas[dt]; ok {
		return s, nil
	}
	raw, err := json.Marshal(BuildRecordJSONSchema(dt))
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	url := strings.ToLower(string(dt)) + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemas[dt] = s
	return s, nil
}

// Validate checks rec against the schema of its document type.
func Validate(rec *Record) error {
	s, err := compiledSchema(rec.DocType())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("record does not match %s schema: %w", rec.DocType(), err)
	}
	return nil
}
