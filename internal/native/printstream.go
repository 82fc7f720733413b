package native

import (
	"fmt"

	"github.com/mabhi256/mjvm/internal/runtime"
)

func invokePrintStream(methodName, descriptor string, frame *runtime.Frame, heap *runtime.Heap) bool {
	if methodName != "println" {
		return false
	}

	switch descriptor {
	case "(I)V":
		v, _ := frame.PopInt()
		frame.Pop() // receiver (System.out), carries no state here
		fmt.Println(v)
		return true

	case "(J)V":
		v, _ := frame.Pop().AsLong()
		frame.Pop()
		fmt.Println(v)
		return true

	case "(Ljava/lang/String;)V":
		arg := frame.Pop()
		frame.Pop()
		fmt.Println(stringText(arg, heap))
		return true

	default:
		return false
	}
}

// stringText resolves a println argument to display text whether it
// arrived as an interned String object or a raw string literal value.
func stringText(v runtime.Value, heap *runtime.Heap) string {
	if v.IsObject() {
		if obj, ok := heap.Get(v.ObjectID()); ok {
			return obj.GetField("value").RawString()
		}
		return "null"
	}
	return v.RawString()
}
