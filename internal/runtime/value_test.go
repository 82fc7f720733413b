package runtime

import "testing"

func assert(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatal(msg)
	}
}

func TestAsIntCoercesFloatingValues(t *testing.T) {
	v := DoubleValue(3.9)
	i, diag := v.AsInt()
	assert(t, diag == nil, "expected no diagnostic narrowing a double to int")
	assert(t, i == 3, "expected truncation toward zero")
}

func TestAsIntOnNonNumericSurfacesDiagnostic(t *testing.T) {
	v := StringValue("not a number")
	_, diag := v.AsInt()
	assert(t, diag != nil, "expected diagnostic coercing a string to int")
	assert(t, diag.Severity == SeverityWarning, "expected warning severity")
}

func TestNullValueIsNullNotObject(t *testing.T) {
	v := NullValue()
	assert(t, v.IsNull(), "expected IsNull true")
	assert(t, !v.IsObject(), "null value must not report as object")
}
