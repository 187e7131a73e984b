package luau

// ---------------------------------------------------------------------------
// Upvalue cells
// ---------------------------------------------------------------------------

// Upvalue is a capture cell with exactly two states. Open cells alias a live
// register slot of the owning frame; closed cells own their value. The
// transition is one-way: once closed, a cell never reopens.
type Upvalue struct {
	closed bool
	value  Value  // valid when closed
	frame  *frame // valid when open
	slot   uint8  // valid when open
}

// closedUpvalue creates a cell that starts closed over v, used for by-value
// captures.
func closedUpvalue(v Value) *Upvalue {
	return &Upvalue{closed: true, value: v}
}

func (u *Upvalue) get() Value {
	if u.closed {
		return u.value
	}
	return u.frame.registers[u.slot]
}

func (u *Upvalue) set(v Value) {
	if u.closed {
		u.value = v
		return
	}
	u.frame.registers[u.slot] = v
}

// close snapshots the aliased register and detaches from the frame.
func (u *Upvalue) close() {
	if u.closed {
		return
	}
	u.value = u.frame.registers[u.slot]
	u.frame = nil
	u.closed = true
}

// ---------------------------------------------------------------------------
// Call frames
// ---------------------------------------------------------------------------

// frame is one activation record: the register file, the vararg bundle, the
// open-arity watermark, and per-frame capture and iteration bookkeeping.
type frame struct {
	registers []Value
	varargs   []Value

	// top is the index of the last live register during open-arity
	// sequences (CALL B=0, RETURN B=0, SETLIST C=0, GETVARARGS B=0).
	top int32

	openUpvalues []*Upvalue

	// iterators holds generalized-iteration adapters, keyed by the code
	// index of the owning FORGLOOP word.
	iterators map[int32]*pullIterator
}

func newFrame(maxStack uint8) *frame {
	return &frame{registers: make([]Value, maxStack)}
}

// openOn returns the open cell aliasing the given register slot, sharing an
// existing cell when one is already open there.
func (f *frame) openOn(slot uint8) *Upvalue {
	for _, u := range f.openUpvalues {
		if !u.closed && u.slot == slot {
			return u
		}
	}
	u := &Upvalue{frame: f, slot: slot}
	f.openUpvalues = append(f.openUpvalues, u)
	return u
}

// closeFrom closes every open cell aliasing a register at or above slot.
func (f *frame) closeFrom(slot int32) {
	kept := f.openUpvalues[:0]
	for _, u := range f.openUpvalues {
		if !u.closed && int32(u.slot) >= slot {
			u.close()
			continue
		}
		kept = append(kept, u)
	}
	f.openUpvalues = kept
}

// release runs at frame exit: closes every remaining open cell and stops
// every live iteration adapter.
func (f *frame) release() {
	f.closeFrom(0)
	for _, it := range f.iterators {
		it.stop()
	}
	f.iterators = nil
}
