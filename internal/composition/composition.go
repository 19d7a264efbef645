// Package composition materializes ordered feature tables from raw market
// data. A composition declares a fixed set of named fields and produces rows
// whose width must match that declaration exactly.
package composition

import (
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// Row is one fixed-width tuple of typed scalars.
type Row []Value

// Composition produces the time-ordered feature table a strategy iterates
// over. Fields maps field names to their column index, shared across all rows.
type Composition interface {
	ID() string
	Name() string
	Description() string
	Fields() map[string]int
	Compose() ([]Row, error)
}

// Validate checks that every row has exactly as many columns as the declared
// field count. A width mismatch is a hard data error.
func Validate(rows []Row, fields map[string]int) error {
	want := len(fields)
	for i, row := range rows {
		if len(row) != want {
			return errors.Newf(errors.ErrCodeMalformedComposition,
				"row %d has %d fields, composition declares %d", i, len(row), want)
		}
	}
	return nil
}

// FieldIndex resolves a field name against the composition's declared mapping.
func FieldIndex(fields map[string]int, name string) (int, error) {
	idx, ok := fields[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeFieldNotFound,
			"composition has no field %q", name)
	}
	return idx, nil
}
