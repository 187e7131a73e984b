package luau

import "testing"

func TestTableListAndHashParts(t *testing.T) {
	tbl := NewTable(0)
	tbl.Set(1.0, "a")
	tbl.Set(2.0, "b")
	tbl.Set("name", "c")

	if got := tbl.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
	if got := tbl.Get(2.0); got != "b" {
		t.Errorf("t[2] = %v, want b", got)
	}
	if got := tbl.Get("name"); got != "c" {
		t.Errorf("t.name = %v, want c", got)
	}
	if got := tbl.Get(9.0); got != nil {
		t.Errorf("t[9] = %v, want nil", got)
	}
}

func TestTableNilRemoval(t *testing.T) {
	tbl := NewTable(0)
	tbl.Set("k", 1.0)
	tbl.Set("k", nil)
	if got := tbl.Get("k"); got != nil {
		t.Errorf("deleted key = %v, want nil", got)
	}

	tbl.Set(1.0, "a")
	tbl.Set(2.0, "b")
	tbl.Set(2.0, nil)
	if got := tbl.Len(); got != 1 {
		t.Errorf("Len after tail removal = %d, want 1", got)
	}
}

func TestTableIterationOrder(t *testing.T) {
	tbl := NewTable(0)
	tbl.SetList(1, []Value{"x", "y"})
	tbl.Set("first", 1.0)
	tbl.Set("second", 2.0)

	var keys []Value
	for k := range tbl.Iter() {
		keys = append(keys, k)
	}
	want := []Value{1.0, 2.0, "first", "second"}
	if len(keys) != len(want) {
		t.Fatalf("iterated %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %v, want %v", i, keys[i], want[i])
		}
	}
}
