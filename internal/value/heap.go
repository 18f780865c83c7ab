package value

import "fmt"

// StringEntry is a heap-resident string literal.
type StringEntry struct {
	Str  string
	Type DataType // STR or STR_S
}

// ArrayEntry is a heap-resident integer array literal. AddressOf marks
// entries that hold &scopedname references rather than literal values
// (populated once AddressOf.scopedname is resolved, per the AST invariant).
type ArrayEntry struct {
	Type      DataType // ARRAY_UB, ARRAY_B, ARRAY_UW, or ARRAY_W
	Values    []int64
	AddressOf []string // parallel to Values when non-nil: &name per slot
}

// DoubleArrayEntry is a heap-resident ARRAY_F literal.
type DoubleArrayEntry struct {
	Values []float64
}

// Heap is the process-scope append-only table of string and array literals.
// Ids are stable once issued; the heap never compacts during compilation.
type Heap struct {
	strings       []StringEntry
	arrays        []ArrayEntry
	doubleArrays  []DoubleArrayEntry
	kinds         []heapKind
	sentinelID    int
	sentinelSet   bool
}

type heapKind int

const (
	kindString heapKind = iota
	kindArray
	kindDoubleArray
)

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

func (h *Heap) nextID() int { return len(h.kinds) }

// AddString appends a string literal and returns its stable id.
func (h *Heap) AddString(s string, t DataType) int {
	id := h.nextID()
	h.strings = append(h.strings, StringEntry{Str: s, Type: t})
	h.kinds = append(h.kinds, kindString)
	return id
}

// AddArray appends an integer array literal and returns its stable id.
func (h *Heap) AddArray(t DataType, values []int64) int {
	id := h.nextID()
	h.arrays = append(h.arrays, ArrayEntry{Type: t, Values: values})
	h.kinds = append(h.kinds, kindArray)
	return id
}

// AddDoubleArray appends a float array literal and returns its stable id.
func (h *Heap) AddDoubleArray(values []float64) int {
	id := h.nextID()
	h.doubleArrays = append(h.doubleArrays, DoubleArrayEntry{Values: values})
	h.kinds = append(h.kinds, kindDoubleArray)
	return id
}

// StringSentinel returns the id of the shared empty-string entry, allocating
// it on first use. It is reused as the default initializer for
// uninitialized string-typed variables.
func (h *Heap) StringSentinel() int {
	if !h.sentinelSet {
		h.sentinelID = h.AddString("", STR)
		h.sentinelSet = true
	}
	return h.sentinelID
}

// String looks up a string entry by id.
func (h *Heap) String(id int) (StringEntry, error) {
	if id < 0 || id >= len(h.kinds) || h.kinds[id] != kindString {
		return StringEntry{}, fmt.Errorf("heap id %d is not a string entry", id)
	}
	return h.strings[h.indexOf(id)], nil
}

// Array looks up an array entry by id.
func (h *Heap) Array(id int) (ArrayEntry, error) {
	if id < 0 || id >= len(h.kinds) || h.kinds[id] != kindArray {
		return ArrayEntry{}, fmt.Errorf("heap id %d is not an array entry", id)
	}
	return h.arrays[h.indexOf(id)], nil
}

// DoubleArray looks up a float array entry by id.
func (h *Heap) DoubleArray(id int) (DoubleArrayEntry, error) {
	if id < 0 || id >= len(h.kinds) || h.kinds[id] != kindDoubleArray {
		return DoubleArrayEntry{}, fmt.Errorf("heap id %d is not a double-array entry", id)
	}
	return h.doubleArrays[h.indexOf(id)], nil
}

// indexOf converts a global heap id into the index within its kind-specific
// slice. Kinds are tracked in parallel so this is a simple linear count;
// heaps are small enough in practice (one module's literal pool) that this
// never needs a faster index.
func (h *Heap) indexOf(id int) int {
	idx := 0
	for i := 0; i < id; i++ {
		if h.kinds[i] == h.kinds[id] {
			idx++
		}
	}
	return idx
}

// Len returns the total number of entries on the heap, across all kinds.
func (h *Heap) Len() int { return len(h.kinds) }
