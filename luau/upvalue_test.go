package luau

import "testing"

func TestOpenUpvalueAliasesRegister(t *testing.T) {
	f := newFrame(4)
	f.registers[2] = 10.0

	u := f.openOn(2)
	if got := u.get(); got != 10.0 {
		t.Errorf("get = %v, want 10", got)
	}

	f.registers[2] = 20.0
	if got := u.get(); got != 20.0 {
		t.Errorf("get after register write = %v, want 20", got)
	}

	u.set(30.0)
	if got := f.registers[2]; got != 30.0 {
		t.Errorf("register after set = %v, want 30", got)
	}
}

func TestOpenOnSharesCells(t *testing.T) {
	f := newFrame(4)
	a := f.openOn(1)
	b := f.openOn(1)
	if a != b {
		t.Error("two captures of the same slot got distinct cells")
	}
	if c := f.openOn(2); c == a {
		t.Error("captures of distinct slots shared a cell")
	}
}

func TestCloseFromThreshold(t *testing.T) {
	f := newFrame(4)
	f.registers[0] = "low"
	f.registers[2] = "high"
	low := f.openOn(0)
	high := f.openOn(2)

	f.closeFrom(1)

	if low.closed {
		t.Error("cell below the threshold was closed")
	}
	if !high.closed {
		t.Error("cell at the threshold stayed open")
	}

	// A closed cell owns its snapshot; the register no longer matters.
	f.registers[2] = "changed"
	if got := high.get(); got != "high" {
		t.Errorf("closed cell = %v, want high", got)
	}

	high.set("updated")
	if got := high.get(); got != "updated" {
		t.Errorf("closed cell after set = %v, want updated", got)
	}
	if f.registers[2] != "changed" {
		t.Error("writing a closed cell touched the register")
	}
}

func TestCloseIsOneWay(t *testing.T) {
	f := newFrame(2)
	f.registers[0] = 1.0
	u := f.openOn(0)
	u.close()
	u.close() // second close is a no-op
	if got := u.get(); got != 1.0 {
		t.Errorf("get = %v, want 1", got)
	}
}
