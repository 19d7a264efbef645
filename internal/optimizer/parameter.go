// Package optimizer implements exhaustive grid search over a strategy's
// declared hyperparameter space, one independent backtest per combination.
package optimizer

import (
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// ParameterMap is one concrete assignment of hyperparameter values by name.
type ParameterMap = map[string]composition.Value

// ParameterKind discriminates the variants of Parameter.
type ParameterKind int

const (
	KindNumeric ParameterKind = iota
	KindCategoric
)

// NumericParameter is an integer range [Start, End) enumerated in Step
// increments.
type NumericParameter struct {
	Name  string
	Start int
	End   int
	Step  int
}

// Values enumerates the range.
func (p NumericParameter) Values() []int {
	if p.Step <= 0 {
		return nil
	}

	var values []int
	for v := p.Start; v < p.End; v += p.Step {
		values = append(values, v)
	}

	return values
}

// CategoricParameter is a fixed set of string categories. Declared for
// completeness; current strategies only exercise numeric parameters.
type CategoricParameter struct {
	Name       string
	Categories []string
}

// Parameter is a tagged union over the parameter variants.
type Parameter struct {
	kind      ParameterKind
	numeric   NumericParameter
	categoric CategoricParameter
}

func Numeric(p NumericParameter) Parameter {
	return Parameter{kind: KindNumeric, numeric: p, categoric: CategoricParameter{}}
}

func Categoric(p CategoricParameter) Parameter {
	return Parameter{kind: KindCategoric, numeric: NumericParameter{}, categoric: p}
}

func (p Parameter) Kind() ParameterKind {
	return p.kind
}

func (p Parameter) Name() string {
	if p.kind == KindNumeric {
		return p.numeric.Name
	}

	return p.categoric.Name
}

func (p Parameter) AsNumeric() (NumericParameter, error) {
	if p.kind != KindNumeric {
		return NumericParameter{}, errors.Newf(errors.ErrCodeParameterKindMissing,
			"parameter %q is not numeric", p.Name())
	}

	return p.numeric, nil
}

func (p Parameter) AsCategoric() (CategoricParameter, error) {
	if p.kind != KindCategoric {
		return CategoricParameter{}, errors.Newf(errors.ErrCodeParameterKindMissing,
			"parameter %q is not categoric", p.Name())
	}

	return p.categoric, nil
}

// SizeFromMap extracts an integer parameter from an assignment map.
func SizeFromMap(params ParameterMap, name string) (int, error) {
	value, ok := params[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeMissingParameter,
			"parameter %q is missing", name)
	}

	return value.AsSize()
}
