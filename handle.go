package javaser

// handleBase is the wire's first handle index; every stream numbers its
// first allocated handle 0x7E0000, with each subsequent one consecutive.
const handleBase = 0x7E0000

// handleTable is an append-only, indexed store of decoded values. It
// supports deferred (placeholder) insertion so a value can reserve its
// slot before its internal components are decoded — used for enum
// constants and objects. Class descriptors are appended directly, since
// the stored pointer is filled in place.
type handleTable struct {
	values []Value
}

// reserve allocates the next slot, filling it with a nil placeholder,
// and returns its table index (not its wire handle number).
func (h *handleTable) reserve() int {
	idx := len(h.values)
	h.values = append(h.values, nil)
	return idx
}

// assign fills a previously reserved slot.
func (h *handleTable) assign(idx int, v Value) {
	h.values[idx] = v
}

// append reserves and assigns in one step, returning v.
func (h *handleTable) append(v Value) Value {
	h.values = append(h.values, v)
	return v
}

// get returns the value stored at idx. The second return is false when
// idx is out of range.
func (h *handleTable) get(idx int) (Value, bool) {
	if idx < 0 || idx >= len(h.values) {
		return nil, false
	}
	return h.values[idx], true
}
