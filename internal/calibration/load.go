package calibration

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// DefaultUnit is used for scales that do not name a unit.
const DefaultUnit = "m"

// LoadError is a problem in a scale table, with its CUE source position
// when one is known.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads a CUE scale table from disk. See Parse for the format.
func LoadFile(path string) (*Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scale table: %w", err)
	}
	return Parse(path, src)
}

// Parse compiles a CUE scale table. The document must define a top-level
// "scale" struct whose fields are scale identifiers:
//
//	scale: "100": {label: "1:100", factor: 0.125, unit: "m"}
//
// label and unit are optional; factor must be a positive number.
func Parse(filename string, src []byte) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	table := v.LookupPath(cue.ParsePath("scale"))
	if !table.Exists() {
		return nil, &LoadError{
			Field:   "scale",
			Message: "scale table is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := table.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var scales []Scale
	for iter.Next() {
		s, err := parseScale(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		scales = append(scales, s)
	}
	if len(scales) == 0 {
		return nil, &LoadError{
			Field:   "scale",
			Message: "at least one scale is required",
			Pos:     table.Pos(),
		}
	}

	return NewRegistry(scales...)
}

func parseScale(id string, v cue.Value) (Scale, error) {
	s := Scale{ID: id}

	factorVal := v.LookupPath(cue.ParsePath("factor"))
	if !factorVal.Exists() {
		return Scale{}, &LoadError{
			Field:   "scale." + id + ".factor",
			Message: "factor is required",
			Pos:     v.Pos(),
		}
	}
	factor, err := factorVal.Float64()
	if err != nil {
		return Scale{}, formatCUEError(err)
	}
	if factor <= 0 {
		return Scale{}, &LoadError{
			Field:   "scale." + id + ".factor",
			Message: fmt.Sprintf("factor %g must be > 0", factor),
			Pos:     factorVal.Pos(),
		}
	}
	s.Factor = factor

	if s.Label, err = optionalString(v, "label"); err != nil {
		return Scale{}, err
	}
	if s.Unit, err = optionalString(v, "unit"); err != nil {
		return Scale{}, err
	}

	return s, nil
}

// optionalString resolves defaults before reading, so `*"m" | string`
// yields "m".
func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	fv, _ = fv.Default()
	str, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return str, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
