package ra

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrInvalidType is returned when a value cannot be converted to a Type.
var ErrInvalidType = errors.NewKind("invalid type: %s")

// Type is one of the four scalar kinds a value expression may carry. The
// zero Type (a nil Type field on a Column) stands for the
// "null"/unresolved kind, which is only ever
// legal on a ColumnValue whose relation has not been bound yet.
type Type interface {
	// Name is the type's tag, as used when rendering a Constant or an
	// unresolved ColumnValue for diagnostics.
	Name() string
	// Check reports whether v is a valid Go representation of this type.
	Check(v interface{}) bool
	// Convert coerces v (as produced by a parser's literal, always a
	// plain Go scalar) into this type's canonical representation.
	Convert(v interface{}) (interface{}, error)
	// Compare orders two already-converted values of this type.
	Compare(a, b interface{}) int
}

func sameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name()
}

// StringType is the "string" scalar kind.
var StringType Type = stringType{}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Check(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func (stringType) Convert(v interface{}) (interface{}, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v", v))
	}
	return s, nil
}

func (stringType) Compare(a, b interface{}) int {
	as, bs := a.(string), b.(string)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// NumberType is the "number" scalar kind, stored as float64.
var NumberType Type = numberType{}

type numberType struct{}

func (numberType) Name() string { return "number" }

func (numberType) Check(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

func (numberType) Convert(v interface{}) (interface{}, error) {
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v", v))
	}
	return n, nil
}

func (numberType) Compare(a, b interface{}) int {
	af, bf := a.(float64), b.(float64)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// BooleanType is the "boolean" scalar kind.
var BooleanType Type = booleanType{}

type booleanType struct{}

func (booleanType) Name() string { return "boolean" }

func (booleanType) Check(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func (booleanType) Convert(v interface{}) (interface{}, error) {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v", v))
	}
	return b, nil
}

func (booleanType) Compare(a, b interface{}) int {
	av, bv := a.(bool), b.(bool)
	switch {
	case av == bv:
		return 0
	case !av:
		return -1
	default:
		return 1
	}
}

// DateType is the "date" scalar kind, stored internally as time.Time in UTC.
var DateType Type = dateType{}

type dateType struct{}

func (dateType) Name() string { return "date" }

func (dateType) Check(v interface{}) bool {
	_, ok := v.(time.Time)
	return ok
}

func (dateType) Convert(v interface{}) (interface{}, error) {
	t, err := cast.ToTimeE(v)
	if err != nil {
		return nil, ErrInvalidType.New(fmt.Sprintf("%v", v))
	}
	return t.UTC(), nil
}

func (dateType) Compare(a, b interface{}) int {
	at, bt := a.(time.Time), b.(time.Time)
	switch {
	case at.Before(bt):
		return -1
	case at.After(bt):
		return 1
	default:
		return 0
	}
}

// TypeOf infers the Type tag for a raw literal value as handed over by a
// parser. A literal's own Go type is already known, so this is tagging,
// not column-type inference.
func TypeOf(v interface{}) (Type, error) {
	switch v.(type) {
	case string:
		return StringType, nil
	case bool:
		return BooleanType, nil
	case time.Time:
		return DateType, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return NumberType, nil
	default:
		return nil, ErrInvalidType.New(fmt.Sprintf("%v (%T)", v, v))
	}
}
