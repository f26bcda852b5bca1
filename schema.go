package vastdb

import (
	"github.com/apache/arrow/go/v10/arrow"

	"github.com/vast-data/vastdb-go/errors"
)

// SchemaMergeFunc folds the schema of one staged file into the schema
// accumulated so far. current is nil (or empty) on the first call.
type SchemaMergeFunc func(current, incoming *arrow.Schema) (*arrow.Schema, error)

// DefaultSchemaMerge accepts two schemas where one is contained in the
// other and returns the wider one, preserving its field order. Fields
// present in both must match exactly.
func DefaultSchemaMerge(current, incoming *arrow.Schema) (*arrow.Schema, error) {
	if current == nil || len(current.Fields()) == 0 {
		return incoming, nil
	}
	narrow, wide := current, incoming
	result := incoming
	if len(current.Fields()) > len(incoming.Fields()) {
		narrow, wide = incoming, current
		result = current
	}
	for _, f := range narrow.Fields() {
		if !schemaHasField(wide, f) {
			return nil, errors.Newf(ErrInvalidArgument,
				"found mismatch in staged file schemas: field %q", f.Name)
		}
	}
	return result, nil
}

// StrictSchemaMerge requires the two schemas to be identical.
func StrictSchemaMerge(current, incoming *arrow.Schema) (*arrow.Schema, error) {
	if current != nil && len(current.Fields()) > 0 && !current.Equal(incoming) {
		return nil, errors.Newf(ErrInvalidArgument,
			"schemas are not identical:\n%v\nvs\n%v", current, incoming)
	}
	return incoming, nil
}

// UnionSchemaMerge returns the union of the two schemas' fields, keeping
// current's field order and appending incoming's new fields. A field
// appearing in both must match exactly.
func UnionSchemaMerge(current, incoming *arrow.Schema) (*arrow.Schema, error) {
	if current == nil || len(current.Fields()) == 0 {
		return incoming, nil
	}
	fields := append([]arrow.Field{}, current.Fields()...)
	for _, f := range incoming.Fields() {
		idxs := current.FieldIndices(f.Name)
		if len(idxs) == 0 {
			fields = append(fields, f)
			continue
		}
		if !schemaHasField(current, f) {
			return nil, errors.Newf(ErrInvalidArgument,
				"conflicting definitions for field %q", f.Name)
		}
	}
	return arrow.NewSchema(fields, nil), nil
}

func schemaHasField(s *arrow.Schema, f arrow.Field) bool {
	for _, i := range s.FieldIndices(f.Name) {
		if s.Field(i).Equal(f) {
			return true
		}
	}
	return false
}
