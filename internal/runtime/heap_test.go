package runtime

import "testing"

func TestAllocStringInterns(t *testing.T) {
	h := NewHeap()
	a := h.AllocString("hello")
	b := h.AllocString("hello")
	assert(t, a == b, "expected repeated AllocString of identical content to return the same id")

	c := h.AllocString("different")
	assert(t, c != a, "expected distinct content to allocate a distinct id")
}

func TestRetainAliveSweepsUnmarked(t *testing.T) {
	h := NewHeap()
	keep := h.AllocObject("Kept")
	h.AllocObject("Dropped")
	h.AllocObject("AlsoDropped")

	assert(t, h.ObjectCount() == 3, "expected three live objects before collection")

	collected := h.RetainAlive(map[ObjectID]bool{keep: true})
	assert(t, collected == 2, "expected two objects collected")
	assert(t, h.ObjectCount() == 1, "expected one object to survive")

	_, ok := h.Get(keep)
	assert(t, ok, "expected retained object to still be reachable")
}

func TestRetainAliveDropsStringPoolEntries(t *testing.T) {
	h := NewHeap()
	h.AllocString("ephemeral")
	h.RetainAlive(map[ObjectID]bool{})

	again := h.AllocString("ephemeral")
	assert(t, h.ObjectCount() == 1, "expected re-interning after a sweep to allocate fresh")
	_, ok := h.Get(again)
	assert(t, ok, "expected freshly re-interned string to be live")
}
