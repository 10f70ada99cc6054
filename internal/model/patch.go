package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Patch is a partial update. Keys may use either spelling of a field; values
// are JSON-compatible and a nil value clears the field.
type Patch map[string]any

// Columns validates the patch against the mapping table and returns the
// storage columns it touches, sorted.
func (p Patch) Columns(fields Fields) ([]string, error) {
	cols := make([]string, 0, len(p))
	seen := make(map[string]bool, len(p))
	for name := range p {
		f, ok := fields.Lookup(name)
		if !ok {
			return nil, &ValidationError{Field: name, Reason: "is not a known field"}
		}
		if f.ReadOnly {
			return nil, &ValidationError{Field: f.View, Reason: "is read-only"}
		}
		if seen[f.Column] {
			return nil, &ValidationError{Field: f.View, Reason: "is given in both spellings"}
		}
		seen[f.Column] = true
		cols = append(cols, f.Column)
	}
	sort.Strings(cols)
	return cols, nil
}

// Apply merges p into a copy of v. Field names are translated through the
// kind's mapping table so view and storage spellings both work.
func Apply[T any](v T, fields Fields, p Patch) (T, error) {
	var out T
	if _, err := p.Columns(fields); err != nil {
		return out, err
	}

	current, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("encoding record: %w", err)
	}
	merged := map[string]any{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return out, fmt.Errorf("decoding record: %w", err)
	}
	for name, val := range p {
		f, _ := fields.Lookup(name)
		merged[f.View] = val
	}

	b, err := json.Marshal(merged)
	if err != nil {
		return out, &ValidationError{Field: "patch", Reason: "is not JSON-encodable"}
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, &ValidationError{Field: typeErr.Field, Reason: "has the wrong type"}
		}
		return out, fmt.Errorf("applying patch: %w", err)
	}
	return out, nil
}
