package gc

import (
	"testing"

	"github.com/mabhi256/mjvm/internal/runtime"
)

func TestCollectRetainsObjectsReachableFromFrame(t *testing.T) {
	heap := runtime.NewHeap()
	stack := runtime.NewStack()

	kept := heap.AllocObject("Kept")
	heap.AllocObject("Garbage")

	frame := runtime.NewFrame("Demo", "main", "()V", 1, 4)
	frame.SetLocal(0, runtime.ObjectValue(kept))
	stack.PushFrame(frame)

	c := NewCollector()
	c.Collect(heap, stack)

	assertGC(t, heap.ObjectCount() == 1, "expected only the reachable object to survive")
	_, ok := heap.Get(kept)
	assertGC(t, ok, "expected the locally-referenced object to survive collection")
	assertGC(t, len(c.Ledger.All()) == 1, "expected the collection to be recorded in the ledger")
}

func TestCollectFollowsFieldReferencesRecursively(t *testing.T) {
	heap := runtime.NewHeap()
	stack := runtime.NewStack()

	child := heap.AllocObject("Child")
	parent := heap.AllocObject("Parent")
	obj, _ := heap.Get(parent)
	obj.SetField("child", runtime.ObjectValue(child))

	frame := runtime.NewFrame("Demo", "main", "()V", 1, 4)
	frame.SetLocal(0, runtime.ObjectValue(parent))
	stack.PushFrame(frame)

	c := NewCollector()
	c.Collect(heap, stack)

	assertGC(t, heap.ObjectCount() == 2, "expected both parent and its referenced child to survive")
}
