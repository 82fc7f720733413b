package runtime

// ObjectID identifies an allocated object. The zero value never
// refers to a live object and doubles as the heap representation of
// null when paired with KindObject is avoided in favor of KindNull.
type ObjectID uint64

// Object is a heap-allocated instance: the class it was allocated as,
// and its field values keyed by field name. There is no inheritance
// walk for field storage — every instance field, inherited or
// declared, lives in this one flat map, mirroring the class file's
// own flat view of an object's layout.
type Object struct {
	ClassName string
	Fields    map[string]Value
}

func (o *Object) GetField(name string) Value {
	v, ok := o.Fields[name]
	if !ok {
		return NullValue()
	}
	return v
}

func (o *Object) SetField(name string, v Value) {
	o.Fields[name] = v
}

// Heap owns every live object plus the interning table that backs
// string literals. Objects are never freed individually: the
// garbage collector reclaims them as a batch via RetainAlive.
type Heap struct {
	nextID     ObjectID
	objects    map[ObjectID]*Object
	stringPool map[string]ObjectID
}

func NewHeap() *Heap {
	return &Heap{
		nextID:     1,
		objects:    make(map[ObjectID]*Object),
		stringPool: make(map[string]ObjectID),
	}
}

// AllocObject allocates a fresh instance of className with an empty
// field set.
func (h *Heap) AllocObject(className string) ObjectID {
	id := h.nextID
	h.nextID++
	h.objects[id] = &Object{ClassName: className, Fields: make(map[string]Value)}
	return id
}

// AllocString interns s: repeated calls with the same content return
// the same ObjectID instead of allocating a new java/lang/String
// instance each time.
func (h *Heap) AllocString(s string) ObjectID {
	if id, ok := h.stringPool[s]; ok {
		return id
	}
	id := h.AllocObject("java/lang/String")
	h.objects[id].SetField("value", StringValue(s))
	h.stringPool[s] = id
	return id
}

// Get returns the object behind id, or false if it no longer exists
// (already collected, or never allocated).
func (h *Heap) Get(id ObjectID) (*Object, bool) {
	o, ok := h.objects[id]
	return o, ok
}

// ObjectCount reports how many objects are currently live. The
// interpreter consults this after every instruction to decide whether
// to trigger a collection.
func (h *Heap) ObjectCount() int {
	return len(h.objects)
}

// RetainAlive discards every object whose id is not in marked. It is
// the sole means of reclaiming heap memory; string-pool entries
// pointing at a discarded object are dropped too so interning can
// never resurrect a dead id.
func (h *Heap) RetainAlive(marked map[ObjectID]bool) int {
	before := len(h.objects)
	for id := range h.objects {
		if !marked[id] {
			delete(h.objects, id)
		}
	}
	for s, id := range h.stringPool {
		if _, ok := h.objects[id]; !ok {
			delete(h.stringPool, s)
		}
	}
	return before - len(h.objects)
}

// IterObjects calls fn for every live object. Used by the debugger's
// heap view.
func (h *Heap) IterObjects(fn func(ObjectID, *Object)) {
	for id, obj := range h.objects {
		fn(id, obj)
	}
}
