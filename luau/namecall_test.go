package luau

import "testing"

// namecallModule builds: obj = <global>; return obj:answer()
func namecallModule() []byte {
	return buildModule([]string{"obj", "answer"}, []protoSpec{{
		maxStack: 2,
		code: []uint32{
			insABC(OpGETGLOBAL, 0, 0, 0),
			0, // aux: constant 0 ("obj")
			insABC(OpNAMECALL, 0, 0, 0),
			1, // aux: constant 1 ("answer")
			insABC(OpCALL, 0, 2, 2),
			insABC(OpRETURN, 0, 2, 0),
		},
		consts: []any{kStr(1), kStr(2)},
	}}, 0)
}

func TestNamecallTableLookupFallback(t *testing.T) {
	obj := NewTable(0)
	obj.Set("answer", &Builtin{Name: "answer", Fn: func(args ...Value) ([]Value, error) {
		// args[0] is the receiver.
		if len(args) != 1 || args[0] != obj {
			t.Errorf("receiver args = %v", args)
		}
		return []Value{7.0}, nil
	}})
	env := NewTable(0)
	env.Set("obj", obj)

	results := runModule(t, namecallModule(), env, nil)
	if len(results) != 1 || results[0] != 7.0 {
		t.Errorf("results = %v, want [7]", results)
	}
}

func TestNamecallNativeHandlerSplicesResults(t *testing.T) {
	obj := NewTable(0)
	env := NewTable(0)
	env.Set("obj", obj)

	handled := 0
	settings := DefaultSettings()
	settings.Namecall = func(method string, receiver Value, args []Value) ([]Value, bool, error) {
		if method != "answer" {
			return nil, false, nil
		}
		if receiver != obj {
			t.Errorf("receiver = %v, want the obj table", receiver)
		}
		handled++
		return []Value{99.0}, true, nil
	}

	results := runModule(t, namecallModule(), env, settings)
	if handled != 1 {
		t.Fatalf("handler ran %d times, want 1", handled)
	}
	if len(results) != 1 || results[0] != 99.0 {
		t.Errorf("results = %v, want [99]", results)
	}
}

func TestNamecallHandlerDeclineFallsBack(t *testing.T) {
	obj := NewTable(0)
	obj.Set("answer", &Builtin{Name: "answer", Fn: func(args ...Value) ([]Value, error) {
		return []Value{7.0}, nil
	}})
	env := NewTable(0)
	env.Set("obj", obj)

	settings := DefaultSettings()
	settings.Namecall = func(method string, receiver Value, args []Value) ([]Value, bool, error) {
		return nil, false, nil
	}

	results := runModule(t, namecallModule(), env, settings)
	if len(results) != 1 || results[0] != 7.0 {
		t.Errorf("results = %v, want [7]", results)
	}
}

func TestNamecallHookRepeatConfigurable(t *testing.T) {
	env := NewTable(0)
	env.Set("obj", NewTable(0))

	countSteps := func(repeat bool) int {
		steps := 0
		settings := DefaultSettings()
		settings.NamecallRepeatsHooks = repeat
		settings.Namecall = func(method string, receiver Value, args []Value) ([]Value, bool, error) {
			return []Value{1.0}, true, nil
		}
		settings.Hooks.Step = func(ctx *HookContext) { steps++ }

		program, err := LoadBytecode(namecallModule(), env, settings)
		if err != nil {
			t.Fatalf("LoadBytecode: %v", err)
		}
		if _, err := program.Call(); err != nil {
			t.Fatalf("Call: %v", err)
		}
		return steps
	}

	with := countSteps(true)
	without := countSteps(false)
	if with != without+1 {
		t.Errorf("step counts: repeat=%d, no-repeat=%d, want a difference of 1", with, without)
	}
}
