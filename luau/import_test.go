package luau

import "testing"

// importModule builds: return math.pi (as a two-segment import).
func importModule() []byte {
	aux := importAux(0, 1)
	return buildModule([]string{"math", "pi"}, []protoSpec{{
		maxStack: 1,
		code: []uint32{
			insAD(OpGETIMPORT, 0, 2),
			aux,
			insABC(OpRETURN, 0, 2, 0),
		},
		consts: []any{kStr(1), kStr(2), kImport(aux)},
	}}, 0)
}

func mathEnv(pi float64) *Table {
	math := NewTable(0)
	math.Set("pi", pi)
	env := NewTable(0)
	env.Set("math", math)
	return env
}

func TestImportResolvedAtLoadTime(t *testing.T) {
	settings := DefaultSettings()
	settings.UseImportConstants = true
	settings.StaticEnvironment = mathEnv(3.14)

	// The live environment disagrees with the snapshot; the snapshot wins.
	results := runModule(t, importModule(), mathEnv(99.0), settings)
	if len(results) != 1 || results[0] != 3.14 {
		t.Errorf("results = %v, want [3.14]", results)
	}
}

func TestImportResolvedAtRuntime(t *testing.T) {
	results := runModule(t, importModule(), mathEnv(1.5), nil)
	if len(results) != 1 || results[0] != 1.5 {
		t.Errorf("results = %v, want [1.5]", results)
	}
}

func TestImportMissingPathYieldsNil(t *testing.T) {
	results := runModule(t, importModule(), NewTable(0), nil)
	if len(results) != 1 || results[0] != nil {
		t.Errorf("results = %v, want [nil]", results)
	}
}
