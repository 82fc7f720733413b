package runtime

import "testing"

func TestPopFrameOnEmptyStackReturnsNil(t *testing.T) {
	s := NewStack()
	assert(t, s.PopFrame() == nil, "expected popping an empty call stack to return nil")
	assert(t, s.IsEmpty(), "expected empty stack to report IsEmpty")
}

func TestPushPopFrameDepth(t *testing.T) {
	s := NewStack()
	f1 := NewFrame("A", "m", "()V", 1, 1)
	f2 := NewFrame("B", "m", "()V", 1, 1)

	s.PushFrame(f1)
	s.PushFrame(f2)
	assert(t, s.Depth() == 2, "expected depth of 2 after two pushes")
	assert(t, s.CurrentFrame() == f2, "expected current frame to be the most recently pushed")

	popped := s.PopFrame()
	assert(t, popped == f2, "expected pop to return the most recently pushed frame")
	assert(t, s.Depth() == 1, "expected depth of 1 after one pop")
}
