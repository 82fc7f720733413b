// Package gc implements a mark-sweep collector rooted in the active
// call stack's frames, plus a ring-buffer ledger of past collections
// used to surface simple tuning suggestions.
package gc

import (
	"fmt"
	"time"

	"github.com/mabhi256/mjvm/internal/runtime"
)

// Threshold is the live-object count past which the interpreter
// triggers a collection after finishing the current instruction.
const Threshold = 128

// Collector runs mark-sweep passes and keeps a ledger of what each
// pass reclaimed.
type Collector struct {
	Debug  bool
	Ledger *Ledger
}

func NewCollector() *Collector {
	return &Collector{Ledger: NewLedger()}
}

// Collect marks every object reachable from the call stack's frames
// (locals and operand stacks, recursively through object fields) and
// sweeps everything else. The string intern table is not itself a
// root: an interned string survives only if some frame still
// references the object it points to.
func (c *Collector) Collect(heap *runtime.Heap, stack *runtime.Stack) {
	start := time.Now()
	before := heap.ObjectCount()

	marked := make(map[runtime.ObjectID]bool)
	stack.IterFrames(func(f *runtime.Frame) {
		for _, v := range f.Locals {
			markValue(v, heap, marked)
		}
		for _, v := range f.Stack {
			markValue(v, heap, marked)
		}
	})

	collected := heap.RetainAlive(marked)
	after := heap.ObjectCount()

	if c.Debug {
		fmt.Printf("gc: %d -> %d (%d collected)\n", before, after, collected)
	}

	c.Ledger.Record(Record{
		ObjectsBefore:    before,
		ObjectsAfter:     after,
		Collected:        collected,
		TriggerThreshold: Threshold,
		Duration:         time.Since(start),
		Timestamp:        start,
	})
}

func markValue(v runtime.Value, heap *runtime.Heap, marked map[runtime.ObjectID]bool) {
	if !v.IsObject() {
		return
	}
	markObjectRecursive(v.ObjectID(), heap, marked)
}

func markObjectRecursive(id runtime.ObjectID, heap *runtime.Heap, marked map[runtime.ObjectID]bool) {
	if marked[id] {
		return
	}
	obj, ok := heap.Get(id)
	if !ok {
		return
	}
	marked[id] = true
	for _, fv := range obj.Fields {
		markValue(fv, heap, marked)
	}
}
