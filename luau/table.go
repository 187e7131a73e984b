package luau

import "iter"

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

// Table is the Luau table value: a contiguous list part indexed from 1 plus
// a hash part for everything else. Hash-part insertion order is preserved so
// iteration is deterministic.
type Table struct {
	list []Value
	hash map[Value]Value
	keys []Value // hash-part keys in insertion order
}

// NewTable creates an empty table with the given list-part capacity hint.
func NewTable(listCap int) *Table {
	t := &Table{}
	if listCap > 0 {
		t.list = make([]Value, 0, listCap)
	}
	return t
}

// listIndex reports whether k addresses the list part: an integral number in
// [1, len+1]. The returned index is zero-based.
func (t *Table) listIndex(k Value) (int, bool) {
	f, ok := k.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	i := int(f)
	if i < 1 || i > len(t.list)+1 {
		return 0, false
	}
	return i - 1, true
}

// Get returns the value stored under k, or nil.
func (t *Table) Get(k Value) Value {
	if i, ok := t.listIndex(k); ok {
		if i < len(t.list) {
			return t.list[i]
		}
		return nil
	}
	if t.hash == nil {
		return nil
	}
	return t.hash[k]
}

// Set stores v under k. Storing nil removes the entry. Appending at the
// boundary index grows the list part.
func (t *Table) Set(k, v Value) {
	if i, ok := t.listIndex(k); ok {
		switch {
		case i < len(t.list):
			t.list[i] = v
			if v == nil && i == len(t.list)-1 {
				t.list = t.list[:i]
			}
		case v != nil:
			t.list = append(t.list, v)
		}
		return
	}
	if v == nil {
		if t.hash != nil {
			if _, present := t.hash[k]; present {
				delete(t.hash, k)
				for j, kk := range t.keys {
					if kk == k {
						t.keys = append(t.keys[:j], t.keys[j+1:]...)
						break
					}
				}
			}
		}
		return
	}
	if t.hash == nil {
		t.hash = make(map[Value]Value)
	}
	if _, present := t.hash[k]; !present {
		t.keys = append(t.keys, k)
	}
	t.hash[k] = v
}

// SetList stores vals into consecutive integer keys starting at start.
func (t *Table) SetList(start int, vals []Value) {
	for i, v := range vals {
		t.Set(float64(start+i), v)
	}
}

// Len returns the length of the list part, the Luau # operator.
func (t *Table) Len() int {
	return len(t.list)
}

// Iter yields every key/value pair: the list part in index order, then the
// hash part in insertion order.
func (t *Table) Iter() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		for i, v := range t.list {
			if v == nil {
				continue
			}
			if !yield(float64(i+1), v) {
				return
			}
		}
		for _, k := range t.keys {
			v := t.hash[k]
			if v == nil {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}
