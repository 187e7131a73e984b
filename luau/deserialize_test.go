package luau

import (
	"errors"
	"strings"
	"testing"
)

func mustDeserialize(t *testing.T, data []byte, settings *Settings) *Module {
	t.Helper()
	m, err := Deserialize(data, settings)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	return m
}

// returnConstantModule is the smallest useful module: load 42, return it.
func returnConstantModule() []byte {
	return buildModule(nil, []protoSpec{{
		maxStack: 1,
		code: []uint32{
			insAD(OpLOADN, 0, 42),
			insABC(OpRETURN, 0, 2, 0),
		},
	}}, 0)
}

func TestDeserializeMinimalModule(t *testing.T) {
	m := mustDeserialize(t, returnConstantModule(), nil)

	if m.Version != 3 {
		t.Errorf("version = %d, want 3", m.Version)
	}
	if len(m.Protos) != 1 {
		t.Fatalf("prototype count = %d, want 1", len(m.Protos))
	}
	if m.Main != m.Protos[0] {
		t.Error("entry prototype not resolved to proto 0")
	}
	if got := m.Main.SizeCode; got != 2 {
		t.Errorf("code size = %d, want 2", got)
	}
}

func TestDeserializeRejectsCompileFailure(t *testing.T) {
	m, err := Deserialize([]byte{0x00, 'o', 'o', 'p', 's'}, nil)
	if m != nil {
		t.Error("got a module from a compile-failure buffer")
	}
	if !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("got %v, want ErrCorruptBytecode", err)
	}
}

func TestDeserializeRejectsBadVersions(t *testing.T) {
	for _, version := range []byte{1, 2, 7, 255} {
		data := returnConstantModule()
		data[0] = version
		if _, err := Deserialize(data, nil); !errors.Is(err, ErrCorruptBytecode) {
			t.Errorf("version %d: got %v, want ErrCorruptBytecode", version, err)
		}
	}
}

func TestDeserializeRejectsEmptyInput(t *testing.T) {
	if _, err := Deserialize(nil, nil); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("empty input: got %v, want ErrCorruptBytecode", err)
	}
}

func TestDeserializeRejectsTrailingBytes(t *testing.T) {
	data := append(returnConstantModule(), 0xAB)
	_, err := Deserialize(data, nil)
	if !errors.Is(err, ErrCorruptBytecode) {
		t.Fatalf("got %v, want ErrCorruptBytecode", err)
	}
	if !strings.Contains(err.Error(), "trailing") {
		t.Errorf("error %q does not mention trailing bytes", err)
	}
}

func TestDeserializeRejectsUnknownOpcode(t *testing.T) {
	data := buildModule(nil, []protoSpec{{
		maxStack: 1,
		code:     []uint32{insABC(Opcode(0xEE), 0, 0, 0)},
	}}, 0)
	if _, err := Deserialize(data, nil); !errors.Is(err, ErrUnsupportedOpcode) {
		t.Errorf("got %v, want ErrUnsupportedOpcode", err)
	}
}

func TestDeserializeRejectsMissingAuxWord(t *testing.T) {
	// GETGLOBAL needs an aux word; the code section ends without one.
	data := buildModule([]string{"x"}, []protoSpec{{
		maxStack: 1,
		code:     []uint32{insABC(OpGETGLOBAL, 0, 0, 0)},
		consts:   []any{kStr(1)},
	}}, 0)
	if _, err := Deserialize(data, nil); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("got %v, want ErrCorruptBytecode", err)
	}
}

func TestDeserializeAuxPlaceholderAlignment(t *testing.T) {
	data := buildModule([]string{"x"}, []protoSpec{{
		maxStack: 1,
		code: []uint32{
			insABC(OpGETGLOBAL, 0, 0, 0),
			0, // aux: constant index 0
			insABC(OpRETURN, 0, 2, 0),
		},
		consts: []any{kStr(1)},
	}}, 0)
	m := mustDeserialize(t, data, nil)

	code := m.Main.Code
	if len(code) != 3 {
		t.Fatalf("code length = %d, want 3", len(code))
	}
	if code[0] == nil || code[0].Opcode != OpGETGLOBAL {
		t.Errorf("word 0 is not GETGLOBAL")
	}
	if code[1] != nil {
		t.Error("aux word did not keep a nil placeholder")
	}
	if code[2] == nil || code[2].Opcode != OpRETURN {
		t.Errorf("word 2 is not RETURN")
	}
}

func TestDeserializeResolvesConstantRefs(t *testing.T) {
	data := buildModule([]string{"greeting"}, []protoSpec{{
		maxStack: 1,
		code: []uint32{
			insAD(OpLOADK, 0, 1),
			insABC(OpGETGLOBAL, 0, 0, 0),
			0, // aux: constant 0
			insABC(OpRETURN, 0, 2, 0),
		},
		consts: []any{kStr(1), kNum(2.5)},
	}}, 0)
	m := mustDeserialize(t, data, nil)

	code := m.Main.Code
	if got := code[0].K; got != 2.5 {
		t.Errorf("LOADK constant = %v, want 2.5", got)
	}
	if got := code[1].K; got != "greeting" {
		t.Errorf("GETGLOBAL constant = %v, want %q", got, "greeting")
	}
}

func TestDeserializeRejectsConstantIndexOutOfRange(t *testing.T) {
	data := buildModule(nil, []protoSpec{{
		maxStack: 1,
		code: []uint32{
			insAD(OpLOADK, 0, 9),
			insABC(OpRETURN, 0, 2, 0),
		},
		consts: []any{kNum(1)},
	}}, 0)
	if _, err := Deserialize(data, nil); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("got %v, want ErrCorruptBytecode", err)
	}
}

func TestDeserializeRejectsBadStringReference(t *testing.T) {
	data := buildModule([]string{"only"}, []protoSpec{{
		maxStack: 1,
		code:     []uint32{insABC(OpRETURN, 0, 1, 0)},
		consts:   []any{kStr(7)},
	}}, 0)
	if _, err := Deserialize(data, nil); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("got %v, want ErrCorruptBytecode", err)
	}
}

func TestDeserializeRejectsBadMainID(t *testing.T) {
	data := buildModule(nil, []protoSpec{{
		maxStack: 1,
		code:     []uint32{insABC(OpRETURN, 0, 1, 0)},
	}}, 5)
	if _, err := Deserialize(data, nil); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("got %v, want ErrCorruptBytecode", err)
	}
}

func TestDeserializeVectorWidth(t *testing.T) {
	build := func() []byte {
		return buildModule(nil, []protoSpec{{
			maxStack: 1,
			code: []uint32{
				insAD(OpLOADK, 0, 0),
				insABC(OpRETURN, 0, 2, 0),
			},
			consts: []any{kVector{1, 2, 3, 9}},
		}}, 0)
	}

	m := mustDeserialize(t, build(), nil)
	v := m.Main.Constants[0].(Vector)
	if v[3] != 0 {
		t.Errorf("3-wide mode kept fourth lane %g", v[3])
	}

	wide := DefaultSettings()
	wide.VectorSize = 4
	m = mustDeserialize(t, build(), wide)
	v = m.Main.Constants[0].(Vector)
	if v[3] != 9 {
		t.Errorf("4-wide mode lost fourth lane: got %g, want 9", v[3])
	}
}

func TestDeserializeImportPathUnpacking(t *testing.T) {
	data := buildModule([]string{"math", "pi"}, []protoSpec{{
		maxStack: 1,
		code: []uint32{
			insAD(OpGETIMPORT, 0, 2),
			importAux(0, 1),
			insABC(OpRETURN, 0, 2, 0),
		},
		consts: []any{kStr(1), kStr(2), kImport(importAux(0, 1))},
	}}, 0)
	m := mustDeserialize(t, data, nil)

	inst := m.Main.Code[0]
	if inst.KC != 2 {
		t.Fatalf("segment count = %d, want 2", inst.KC)
	}
	if inst.K0 != "math" || inst.K1 != "pi" {
		t.Errorf("path = %q.%q, want math.pi", inst.K0, inst.K1)
	}
}
