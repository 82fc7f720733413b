package native

import "github.com/mabhi256/mjvm/internal/runtime"

func invokeMath(methodName, descriptor string, frame *runtime.Frame, heap *runtime.Heap) bool {
	switch {
	case methodName == "abs" && descriptor == "(I)I":
		v, _ := frame.PopInt()
		if v < 0 {
			v = -v
		}
		frame.PushInt(v)
		return true
	default:
		return false
	}
}
