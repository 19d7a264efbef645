package composition

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat
	KindOptionFloat
	KindBool
	KindString
	KindSize
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindOptionFloat:
		return "option_float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindSize:
		return "size"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the scalar types a composition row may carry.
// Extraction is fallible rather than panicking so that malformed data surfaces
// as a recoverable error.
type Value struct {
	kind        ValueKind
	intVal      int64
	floatVal    float64
	optFloatVal optional.Option[float64]
	boolVal     bool
	stringVal   string
	sizeVal     int
}

func Int(v int64) Value {
	return Value{kind: KindInt, intVal: v}
}

func Float(v float64) Value {
	return Value{kind: KindFloat, floatVal: v}
}

func OptionFloat(v optional.Option[float64]) Value {
	return Value{kind: KindOptionFloat, optFloatVal: v}
}

func Bool(v bool) Value {
	return Value{kind: KindBool, boolVal: v}
}

func String(v string) Value {
	return Value{kind: KindString, stringVal: v}
}

func Size(v int) Value {
	return Value{kind: KindSize, sizeVal: v}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) mismatch(want ValueKind) error {
	return errors.Newf(errors.ErrCodeValueTypeMismatch,
		"expected %s value, got %s", want, v.kind)
}

// AsInt extracts the integer variant, typically a timestamp.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}
	return v.intVal, nil
}

func (v Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, v.mismatch(KindFloat)
	}
	return v.floatVal, nil
}

func (v Value) AsOptionFloat() (optional.Option[float64], error) {
	if v.kind != KindOptionFloat {
		return optional.None[float64](), v.mismatch(KindOptionFloat)
	}
	return v.optFloatVal, nil
}

func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}
	return v.boolVal, nil
}

func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.stringVal, nil
}

func (v Value) AsSize() (int, error) {
	if v.kind != KindSize {
		return 0, v.mismatch(KindSize)
	}
	return v.sizeVal, nil
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.intVal)
	case KindFloat:
		return fmt.Sprintf("%g", v.floatVal)
	case KindOptionFloat:
		if v.optFloatVal.IsNone() {
			return "none"
		}
		return fmt.Sprintf("%g", v.optFloatVal.Unwrap())
	case KindBool:
		return fmt.Sprintf("%t", v.boolVal)
	case KindString:
		return v.stringVal
	case KindSize:
		return fmt.Sprintf("%d", v.sizeVal)
	default:
		return "unknown"
	}
}
