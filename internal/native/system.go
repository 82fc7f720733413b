package native

import (
	"time"

	"github.com/mabhi256/mjvm/internal/runtime"
)

func invokeSystem(methodName, descriptor string, frame *runtime.Frame, heap *runtime.Heap) bool {
	switch {
	case methodName == "currentTimeMillis" && descriptor == "()J":
		millis := time.Now().UnixMilli()
		frame.Push(runtime.LongValue(millis))
		return true
	default:
		return false
	}
}
