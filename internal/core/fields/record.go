// Package fields maps reconstructed document text to a fixed-shape record per
// document type.
package fields

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

// Member is one row of the family card member table.
type Member struct {
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
}

// Record is the structured result for one document. Every field of the
// document type's schema is present; a nil value means "not found".
type Record struct {
	docType constants.DocType
	keys    []string
	values  map[string]any // nil | string | []Member
}

func newRecord(dt constants.DocType, keys []string) *Record {
	r := &Record{docType: dt, keys: keys, values: make(map[string]any, len(keys))}
	for _, k := range keys {
		r.values[k] = nil
	}
	return r
}

// DocType returns the document type the record was extracted for.
func (r *Record) DocType() constants.DocType { return r.docType }

// Keys returns the schema fields in output order.
func (r *Record) Keys() []string { return slices.Clone(r.keys) }

// Get returns a string field. ok is false when the field is null, a list, or
// not part of the schema.
func (r *Record) Get(key string) (string, bool) {
	s, ok := r.values[key].(string)
	return s, ok
}

// Members returns a list field, or nil.
func (r *Record) Members(key string) []Member {
	m, _ := r.values[key].([]Member)
	return m
}

// IsNull reports whether key is in the schema and holds no value.
func (r *Record) IsNull(key string) bool {
	v, ok := r.values[key]
	return ok && v == nil
}

// Found counts non-null fields.
func (r *Record) Found() int {
	n := 0
	for _, v := range r.values {
		if v != nil {
			n++
		}
	}
	return n
}

func (r *Record) has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// setString stores v; empty strings stay null. Keys outside the schema are ignored.
func (r *Record) setString(key, v string) {
	if !r.has(key) || v == "" {
		return
	}
	r.values[key] = v
}

func (r *Record) setMembers(key string, m []Member) {
	if !r.has(key) || len(m) == 0 {
		return
	}
	r.values[key] = m
}

// Map returns the record as a plain map, suitable for JSON or structpb.
// Member lists become []any of map[string]any.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		switch v := r.values[k].(type) {
		case []Member:
			list := make([]any, 0, len(v))
			for _, m := range v {
				list = append(list, map[string]any{"name": m.Name, "nationalId": m.NationalID})
			}
			out[k] = list
		default:
			out[k] = v
		}
	}
	return out
}

// MarshalJSON writes the fields in schema order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
