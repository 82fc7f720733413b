package runtime

import "testing"

func TestPopEmptyStackReturnsNull(t *testing.T) {
	f := NewFrame("Demo", "main", "()V", 1, 4)
	v := f.Pop()
	assert(t, v.IsNull(), "expected popping an empty stack to return Null")
}

func TestPushPastMaxStackWarnsButSucceeds(t *testing.T) {
	f := NewFrame("Demo", "main", "()V", 1, 1)
	diag := f.PushInt(1)
	assert(t, diag == nil, "first push within bound should not warn")

	diag = f.PushInt(2)
	assert(t, diag != nil, "push past max_stack should surface a warning")
	assert(t, diag.Code == "stack-overflow", "expected stack-overflow diagnostic code")
	assert(t, f.StackSize() == 2, "push past max_stack should still succeed")
}

func TestSetLocalGrowsSlotsWithNullFiller(t *testing.T) {
	f := NewFrame("Demo", "main", "()V", 1, 4)
	f.SetLocal(3, IntValue(42))

	v, diag := f.GetLocal(3).AsInt()
	assert(t, diag == nil, "unexpected diagnostic reading a stored int")
	assert(t, v == 42, "expected written slot to round-trip")
	assert(t, f.GetLocal(1).IsNull(), "expected intermediate slot to default to Null")
}
