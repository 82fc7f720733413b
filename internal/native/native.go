// Package native implements the small set of JDK methods the
// interpreter supports without ever loading a real java/lang class
// file: System.currentTimeMillis, Math.abs, and PrintStream.println.
package native

import "github.com/mabhi256/mjvm/internal/runtime"

// adapter is one class's native method table. It returns true if it
// recognized and handled (methodName, descriptor); false tells the
// caller to fall back to loading and interpreting a real class file.
type adapter func(methodName, descriptor string, frame *runtime.Frame, heap *runtime.Heap) bool

var adapters = map[string]adapter{
	"java/lang/System":    invokeSystem,
	"java/lang/Math":      invokeMath,
	"java/io/PrintStream": invokePrintStream,
}

// Invoke dispatches by owner class name to the adapter registered for
// it, if any. Classes with no adapter (i.e. every user-defined class)
// always return false.
func Invoke(className, methodName, descriptor string, frame *runtime.Frame, heap *runtime.Heap) bool {
	adapter, ok := adapters[className]
	if !ok {
		return false
	}
	return adapter(methodName, descriptor, frame, heap)
}
