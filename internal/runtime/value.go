package runtime

import "fmt"

// Value is anything that can live on an operand stack, in a local
// variable slot, or in an object field. There is no interface type
// here deliberately: the interpreter's value set is closed and small
// enough that a tagged union mirrors the bytecode's own type system
// more directly than a Go interface would.
type Value struct {
	kind valueKind
	i    int64   // Int, Long
	f    float64 // Float, Double
	s    string  // String (raw, uninterned literal form)
	obj  ObjectID // Object
}

type valueKind uint8

const (
	KindNull valueKind = iota
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindObject
)

func (v Value) Kind() valueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) IsObject() bool  { return v.kind == KindObject }

func NullValue() Value            { return Value{kind: KindNull} }
func IntValue(i int32) Value      { return Value{kind: KindInt, i: int64(i)} }
func LongValue(i int64) Value     { return Value{kind: KindLong, i: i} }
func FloatValue(f float32) Value  { return Value{kind: KindFloat, f: float64(f)} }
func DoubleValue(f float64) Value { return Value{kind: KindDouble, f: f} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func ObjectValue(id ObjectID) Value { return Value{kind: KindObject, obj: id} }

// ObjectID returns the object reference carried by this value, or 0
// if this value is not an object.
func (v Value) ObjectID() ObjectID {
	if v.kind != KindObject {
		return 0
	}
	return v.obj
}

// RawString returns the literal text carried by a String-kind value.
func (v Value) RawString() string {
	return v.s
}

// AsInt narrows this value to a 32-bit int for arithmetic. Non-numeric
// values surface a diagnostic and coerce to 0 rather than panicking.
func (v Value) AsInt() (int32, *Diagnostic) {
	switch v.kind {
	case KindInt, KindLong:
		return int32(v.i), nil
	case KindFloat, KindDouble:
		return int32(v.f), nil
	default:
		return 0, &Diagnostic{Severity: SeverityWarning, Code: "type-error", Message: fmt.Sprintf("type error: expected numeric value, got %s", v.kind.String())}
	}
}

// AsLong narrows this value to a 64-bit int for arithmetic.
func (v Value) AsLong() (int64, *Diagnostic) {
	switch v.kind {
	case KindInt, KindLong:
		return v.i, nil
	case KindFloat, KindDouble:
		return int64(v.f), nil
	default:
		return 0, &Diagnostic{Severity: SeverityWarning, Code: "type-error", Message: fmt.Sprintf("type error: expected numeric value, got %s", v.kind.String())}
	}
}

func (k valueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindInt:
		return fmt.Sprintf("%d", int32(v.i))
	case KindLong:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", float32(v.f))
	case KindDouble:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindObject:
		return fmt.Sprintf("object#%d", v.obj)
	default:
		return "?"
	}
}
