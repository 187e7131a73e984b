package luau

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Execution engine
// ---------------------------------------------------------------------------

// index reads v[key] for indexable values.
func (p *Program) index(v, key Value) (Value, error) {
	switch t := v.(type) {
	case *Table:
		return t.Get(key), nil
	case Vector:
		if s, ok := key.(string); ok {
			switch s {
			case "x":
				return float64(t[0]), nil
			case "y":
				return float64(t[1]), nil
			case "z":
				return float64(t[2]), nil
			case "w":
				if p.settings.VectorSize == 4 {
					return float64(t[3]), nil
				}
			}
		}
		return nil, fmt.Errorf("attempt to index vector with '%v'", key)
	default:
		return nil, fmt.Errorf("attempt to index a %s value", KindOf(v))
	}
}

// setIndex writes v[key] = val.
func (p *Program) setIndex(v, key, val Value) error {
	t, ok := v.(*Table)
	if !ok {
		return fmt.Errorf("attempt to index a %s value", KindOf(v))
	}
	t.Set(key, val)
	return nil
}

// execute runs one frame to completion. pc is a word index into the code;
// instructions with aux words advance it by two.
func (p *Program) execute(c *Closure, f *frame) ([]Value, error) {
	proto := c.proto
	code := proto.Code
	regs := f.registers
	settings := p.settings
	hooks := &settings.Hooks

	var pc int32
	for p.alive.Load() {
		if pc < 0 || int(pc) >= len(code) {
			return nil, p.faultf(proto, pc, "instruction pointer %d out of bounds", pc)
		}
		ipc := pc
		inst := code[ipc]
		if inst == nil {
			return nil, p.faultf(proto, ipc, "execution reached an auxiliary word")
		}
		pc++

		if hooks.Step != nil {
			hooks.Step(&HookContext{Proto: proto, PC: ipc, Registers: regs})
		}

		switch inst.Opcode {

		// --- Loads and moves ---

		case OpNOP:

		case OpLOADNIL:
			regs[inst.A] = nil

		case OpLOADB:
			regs[inst.A] = inst.B == 1
			pc += int32(inst.C)

		case OpLOADN:
			regs[inst.A] = float64(inst.D)

		case OpLOADK:
			regs[inst.A] = inst.K

		case OpLOADKX:
			regs[inst.A] = inst.K
			pc++

		case OpMOVE:
			regs[inst.A] = regs[inst.B]

		// --- Globals, upvalues, imports ---

		case OpGETGLOBAL:
			key, ok := inst.K.(string)
			if !ok {
				return nil, p.faultf(proto, ipc, "global name is a %s, want string", KindOf(inst.K))
			}
			regs[inst.A] = p.env.Get(key)
			pc++

		case OpSETGLOBAL:
			key, ok := inst.K.(string)
			if !ok {
				return nil, p.faultf(proto, ipc, "global name is a %s, want string", KindOf(inst.K))
			}
			p.env.Set(key, regs[inst.A])
			pc++

		case OpGETUPVAL:
			if int(inst.B) >= len(c.upvalues) {
				return nil, p.faultf(proto, ipc, "upvalue %d out of range", inst.B)
			}
			regs[inst.A] = c.upvalues[inst.B].get()

		case OpSETUPVAL:
			if int(inst.B) >= len(c.upvalues) {
				return nil, p.faultf(proto, ipc, "upvalue %d out of range", inst.B)
			}
			c.upvalues[inst.B].set(regs[inst.A])

		case OpCLOSEUPVALS:
			f.closeFrom(int32(inst.A))

		case OpGETIMPORT:
			if settings.UseImportConstants {
				regs[inst.A] = inst.K
			} else {
				regs[inst.A] = walkImport(p.env, inst)
			}
			pc++

		// --- Table access ---

		case OpGETTABLE:
			v, err := p.index(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpSETTABLE:
			if err := p.setIndex(regs[inst.B], regs[inst.C], regs[inst.A]); err != nil {
				return nil, p.fault(proto, ipc, err)
			}

		case OpGETTABLEKS:
			v, err := p.index(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v
			pc++

		case OpSETTABLEKS:
			if err := p.setIndex(regs[inst.B], inst.K, regs[inst.A]); err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			pc++

		case OpGETTABLEN:
			v, err := p.index(regs[inst.B], float64(inst.C)+1)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpSETTABLEN:
			if err := p.setIndex(regs[inst.B], float64(inst.C)+1, regs[inst.A]); err != nil {
				return nil, p.fault(proto, ipc, err)
			}

		// --- Closures ---

		case OpNEWCLOSURE:
			if inst.D < 0 || int(inst.D) >= len(proto.Children) {
				return nil, p.faultf(proto, ipc, "child prototype %d out of range", inst.D)
			}
			child := p.module.Protos[proto.Children[inst.D]]
			nc := &Closure{proto: child, program: p, upvalues: make([]*Upvalue, child.NumUpvalues)}
			var err error
			pc, err = p.captureUpvalues(c, f, nc, proto, pc, false)
			if err != nil {
				return nil, err
			}
			regs[inst.A] = nc

		case OpDUPCLOSURE:
			id, ok := inst.K.(closureID)
			if !ok {
				return nil, p.faultf(proto, ipc, "closure constant is a %s", KindOf(inst.K))
			}
			if int(id) >= len(p.module.Protos) {
				return nil, p.faultf(proto, ipc, "closure prototype %d out of range", id)
			}
			child := p.module.Protos[id]
			nc := &Closure{proto: child, program: p, upvalues: make([]*Upvalue, child.NumUpvalues)}
			var err error
			pc, err = p.captureUpvalues(c, f, nc, proto, pc, true)
			if err != nil {
				return nil, err
			}
			regs[inst.A] = nc

		case OpCAPTURE:
			return nil, p.faultf(proto, ipc, "unexpected CAPTURE outside closure construction")

		// --- Calls and returns ---

		case OpNAMECALL:
			var err error
			pc, err = p.namecall(f, proto, inst, ipc, pc)
			if err != nil {
				return nil, err
			}

		case OpCALL:
			a := int32(inst.A)
			nargs := int32(inst.B) - 1
			if nargs == -1 {
				nargs = f.top - a
			}
			if nargs < 0 || a+1+nargs > int32(len(regs)) {
				return nil, p.faultf(proto, ipc, "call arguments exceed the register file")
			}
			if hooks.Interrupt != nil {
				hooks.Interrupt(&HookContext{Proto: proto, PC: ipc, Registers: regs})
			}
			ret, err := p.callValue(regs[a], regs[a+1:a+1+nargs])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			spliceResults(f, a, int32(inst.C)-1, ret)

		case OpRETURN:
			a := int32(inst.A)
			n := int32(inst.B) - 1
			if n == -1 {
				n = f.top - a + 1
			}
			if hooks.Interrupt != nil {
				hooks.Interrupt(&HookContext{Proto: proto, PC: ipc, Registers: regs})
			}
			if n <= 0 {
				return nil, nil
			}
			if a+n > int32(len(regs)) {
				return nil, p.faultf(proto, ipc, "return values exceed the register file")
			}
			results := make([]Value, n)
			copy(results, regs[a:a+n])
			return results, nil

		case OpBREAK:
			if hooks.Break == nil {
				return nil, p.faultf(proto, ipc, "breakpoint reached with no break hook installed")
			}
			early, stop := hooks.Break(&HookContext{Proto: proto, PC: ipc, Registers: regs})
			if stop {
				return early, nil
			}

		// --- Jumps ---

		case OpJUMP:
			pc += inst.D

		case OpJUMPBACK:
			if hooks.Interrupt != nil {
				hooks.Interrupt(&HookContext{Proto: proto, PC: ipc, Registers: regs})
			}
			pc += inst.D

		case OpJUMPX:
			if inst.E < 0 && hooks.Interrupt != nil {
				hooks.Interrupt(&HookContext{Proto: proto, PC: ipc, Registers: regs})
			}
			pc += inst.E

		case OpJUMPIF:
			if truthy(regs[inst.A]) {
				pc += inst.D
			}

		case OpJUMPIFNOT:
			if !truthy(regs[inst.A]) {
				pc += inst.D
			}

		case OpJUMPIFEQ:
			if regs[inst.A] == regs[inst.Aux] {
				pc += inst.D
			} else {
				pc++
			}

		case OpJUMPIFNOTEQ:
			if regs[inst.A] != regs[inst.Aux] {
				pc += inst.D
			} else {
				pc++
			}

		case OpJUMPIFLE:
			res, err := compareLessEqual(regs[inst.A], regs[inst.Aux])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			if res {
				pc += inst.D
			} else {
				pc++
			}

		case OpJUMPIFLT:
			res, err := compareLess(regs[inst.A], regs[inst.Aux])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			if res {
				pc += inst.D
			} else {
				pc++
			}

		case OpJUMPIFNOTLE:
			res, err := compareLessEqual(regs[inst.A], regs[inst.Aux])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			if !res {
				pc += inst.D
			} else {
				pc++
			}

		case OpJUMPIFNOTLT:
			res, err := compareLess(regs[inst.A], regs[inst.Aux])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			if !res {
				pc += inst.D
			} else {
				pc++
			}

		case OpJUMPXEQKNIL:
			if (regs[inst.A] == nil) != inst.KN {
				pc += inst.D
			} else {
				pc++
			}

		case OpJUMPXEQKB, OpJUMPXEQKN, OpJUMPXEQKS:
			if (regs[inst.A] == inst.K) != inst.KN {
				pc += inst.D
			} else {
				pc++
			}

		// --- Arithmetic ---

		case OpADD:
			v, err := arithAdd(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpSUB:
			v, err := arithSub(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpMUL:
			v, err := arithMul(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpDIV:
			v, err := arithDiv(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpMOD:
			v, err := arithMod(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpPOW:
			v, err := arithPow(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpIDIV:
			v, err := arithIdiv(regs[inst.B], regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpADDK:
			v, err := arithAdd(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpSUBK:
			v, err := arithSub(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpMULK:
			v, err := arithMul(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpDIVK:
			v, err := arithDiv(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpMODK:
			v, err := arithMod(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpPOWK:
			v, err := arithPow(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpIDIVK:
			v, err := arithIdiv(regs[inst.B], inst.K)
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpSUBRK:
			v, err := arithSub(inst.K, regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpDIVRK:
			v, err := arithDiv(inst.K, regs[inst.C])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		case OpMINUS:
			v, err := arithUnm(regs[inst.B])
			if err != nil {
				return nil, p.fault(proto, ipc, err)
			}
			regs[inst.A] = v

		// --- Logic, concatenation, length ---

		case OpAND:
			if b := regs[inst.B]; truthy(b) {
				regs[inst.A] = regs[inst.C]
			} else {
				regs[inst.A] = b
			}

		case OpOR:
			if b := regs[inst.B]; truthy(b) {
				regs[inst.A] = b
			} else {
				regs[inst.A] = regs[inst.C]
			}

		case OpANDK:
			if b := regs[inst.B]; truthy(b) {
				regs[inst.A] = inst.K
			} else {
				regs[inst.A] = b
			}

		case OpORK:
			if b := regs[inst.B]; truthy(b) {
				regs[inst.A] = b
			} else {
				regs[inst.A] = inst.K
			}

		case OpNOT:
			regs[inst.A] = !truthy(regs[inst.B])

		case OpCONCAT:
			var sb strings.Builder
			for i := int32(inst.B); i <= int32(inst.C); i++ {
				s, ok := concatValue(regs[i])
				if !ok {
					return nil, p.faultf(proto, ipc, "attempt to concatenate a %s value", KindOf(regs[i]))
				}
				sb.WriteString(s)
			}
			regs[inst.A] = sb.String()

		case OpLENGTH:
			switch v := regs[inst.B].(type) {
			case *Table:
				regs[inst.A] = float64(v.Len())
			case string:
				regs[inst.A] = float64(len(v))
			default:
				return nil, p.faultf(proto, ipc, "attempt to get length of a %s value", KindOf(v))
			}

		// --- Table construction ---

		case OpNEWTABLE:
			regs[inst.A] = NewTable(int(inst.Aux))
			pc++

		case OpDUPTABLE:
			tmpl, ok := inst.K.(*tableTemplate)
			if !ok {
				return nil, p.faultf(proto, ipc, "table template constant is a %s", KindOf(inst.K))
			}
			t := NewTable(0)
			if n := len(tmpl.Keys); n > 0 {
				t.hash = make(map[Value]Value, n)
				t.keys = make([]Value, 0, n)
			}
			regs[inst.A] = t

		case OpSETLIST:
			t, ok := regs[inst.A].(*Table)
			if !ok {
				return nil, p.faultf(proto, ipc, "attempt to index a %s value", KindOf(regs[inst.A]))
			}
			b := int32(inst.B)
			n := int32(inst.C) - 1
			if n == -1 {
				n = f.top - b + 1
			}
			if n < 0 || b+n > int32(len(regs)) {
				return nil, p.faultf(proto, ipc, "list elements exceed the register file")
			}
			t.SetList(int(inst.Aux), regs[b:b+n])
			pc++

		// --- Numeric loops ---

		case OpFORNPREP:
			a := int32(inst.A)
			limit, ok := toNumber(regs[a])
			if !ok {
				return nil, p.faultf(proto, ipc, "invalid 'for' limit (number expected, got %s)", KindOf(regs[a]))
			}
			regs[a] = limit
			step, ok := toNumber(regs[a+1])
			if !ok {
				return nil, p.faultf(proto, ipc, "invalid 'for' step (number expected, got %s)", KindOf(regs[a+1]))
			}
			regs[a+1] = step
			index, ok := toNumber(regs[a+2])
			if !ok {
				return nil, p.faultf(proto, ipc, "invalid 'for' initial value (number expected, got %s)", KindOf(regs[a+2]))
			}
			regs[a+2] = index
			if step > 0 {
				if index > limit {
					pc += inst.D
				}
			} else if limit > index {
				pc += inst.D
			}

		case OpFORNLOOP:
			a := int32(inst.A)
			limit, lok := regs[a].(float64)
			step, sok := regs[a+1].(float64)
			current, iok := regs[a+2].(float64)
			if !lok || !sok || !iok {
				return nil, p.faultf(proto, ipc, "numeric 'for' registers were clobbered")
			}
			index := current + step
			regs[a+2] = index
			if (step > 0 && index <= limit) || (step <= 0 && limit <= index) {
				if hooks.Interrupt != nil {
					hooks.Interrupt(&HookContext{Proto: proto, PC: ipc, Registers: regs})
				}
				pc += inst.D
			}

		// --- Generic loops ---

		case OpFORGPREP, OpFORGPREPINEXT, OpFORGPREPNEXT:
			a := int32(inst.A)
			switch regs[a].(type) {
			case *Closure, *Builtin:
			case *Table:
				if !settings.GeneralizedIteration {
					return nil, p.faultf(proto, ipc, "attempt to iterate over a table value")
				}
			default:
				return nil, p.faultf(proto, ipc, "attempt to iterate over a %s value", KindOf(regs[a]))
			}
			pc += inst.D

		case OpFORGLOOP:
			var err error
			pc, err = p.forgloop(f, proto, inst, ipc, pc)
			if err != nil {
				return nil, err
			}

		case OpDEPFORGLOOPNEXT:
			return nil, p.faultf(proto, ipc, "deprecated opcode %s", inst.Opcode)

		// --- Varargs ---

		case OpGETVARARGS:
			a := int32(inst.A)
			n := int32(inst.B) - 1
			if n == -1 {
				n = int32(len(f.varargs))
				f.top = a + n - 1
			}
			if a+n > int32(len(regs)) {
				return nil, p.faultf(proto, ipc, "varargs exceed the register file")
			}
			for i := int32(0); i < n; i++ {
				if int(i) < len(f.varargs) {
					regs[a+i] = f.varargs[i]
				} else {
					regs[a+i] = nil
				}
			}

		case OpPREPVARARGS:
			// Vararg split already happened at frame entry.

		// --- Fast-call hints ---

		// The fast paths are hints; executing the fallback sequence that
		// follows is always correct.
		case OpFASTCALL, OpFASTCALL1:

		case OpFASTCALL2, OpFASTCALL2K, OpFASTCALL3:
			pc++

		// --- Coverage ---

		case OpCOVERAGE:
			inst.Hits++

		default:
			return nil, p.fault(proto, ipc, fmt.Errorf("%w: %s", ErrUnsupportedOpcode, inst.Opcode))
		}
	}

	return nil, p.fault(proto, 0, ErrCancelled)
}

// spliceResults writes call results starting at base. want == -1 keeps every
// result and moves the open-arity watermark.
func spliceResults(f *frame, base, want int32, results []Value) {
	if want == -1 {
		for i, v := range results {
			f.registers[base+int32(i)] = v
		}
		f.top = base + int32(len(results)) - 1
		return
	}
	for i := int32(0); i < want; i++ {
		if int(i) < len(results) {
			f.registers[base+i] = results[i]
		} else {
			f.registers[base+i] = nil
		}
	}
}

// captureUpvalues consumes the CAPTURE pseudo-instructions that follow a
// closure-creating instruction and fills the new closure's cells. shared
// forbids by-reference capture (DUPCLOSURE).
func (p *Program) captureUpvalues(c *Closure, f *frame, nc *Closure, proto *Prototype, pc int32, shared bool) (int32, error) {
	for i := range nc.upvalues {
		if int(pc) >= len(proto.Code) || proto.Code[pc] == nil || proto.Code[pc].Opcode != OpCAPTURE {
			return pc, p.faultf(proto, pc, "closure is missing capture %d of %d", i, len(nc.upvalues))
		}
		pseudo := proto.Code[pc]
		pc++

		switch pseudo.A {
		case captureValue:
			nc.upvalues[i] = closedUpvalue(f.registers[pseudo.B])
		case captureRef:
			if shared {
				return pc, p.faultf(proto, pc-1, "shared closure cannot capture by reference")
			}
			nc.upvalues[i] = f.openOn(pseudo.B)
		case captureUpvalue:
			if int(pseudo.B) >= len(c.upvalues) {
				return pc, p.faultf(proto, pc-1, "captured upvalue %d out of range", pseudo.B)
			}
			nc.upvalues[i] = c.upvalues[pseudo.B]
		default:
			return pc, p.faultf(proto, pc-1, "unknown capture kind %d", pseudo.A)
		}
	}
	return pc, nil
}

// namecall resolves a method-style call. With a native handler installed the
// results splice directly over the CALL instruction that follows; otherwise
// the method is looked up on the receiver and the CALL proceeds normally.
func (p *Program) namecall(f *frame, proto *Prototype, inst *Instruction, ipc, pc int32) (int32, error) {
	regs := f.registers
	method, ok := inst.K.(string)
	if !ok {
		return pc, p.faultf(proto, ipc, "method name is a %s, want string", KindOf(inst.K))
	}
	receiver := regs[inst.B]
	pc++ // aux word

	if int(pc) >= len(proto.Code) || proto.Code[pc] == nil || proto.Code[pc].Opcode != OpCALL {
		return pc, p.faultf(proto, ipc, "NAMECALL without a paired CALL")
	}
	call := proto.Code[pc]
	base := int32(call.A)
	regs[base+1] = receiver

	if p.settings.Namecall != nil {
		nargs := int32(call.B) - 1
		if nargs == -1 {
			nargs = f.top - base
		}
		if nargs < 1 || base+1+nargs > int32(len(regs)) {
			return pc, p.faultf(proto, ipc, "call arguments exceed the register file")
		}
		results, handled, err := p.settings.Namecall(method, receiver, regs[base+2:base+1+nargs])
		if err != nil {
			return pc, p.fault(proto, ipc, err)
		}
		if handled {
			if p.settings.NamecallRepeatsHooks {
				hooks := &p.settings.Hooks
				if hooks.Step != nil {
					hooks.Step(&HookContext{Proto: proto, PC: pc, Registers: regs})
				}
				if hooks.Interrupt != nil {
					hooks.Interrupt(&HookContext{Proto: proto, PC: pc, Registers: regs})
				}
			}
			spliceResults(f, base, int32(call.C)-1, results)
			return pc + 1, nil // past the CALL word
		}
	}

	fn, err := p.index(receiver, method)
	if err != nil {
		return pc, p.fault(proto, ipc, err)
	}
	regs[base] = fn
	return pc, nil
}

// forgloop advances one generic-loop iteration: callable iterators are
// invoked, tables step through a pull adapter owned by this frame.
func (p *Program) forgloop(f *frame, proto *Prototype, inst *Instruction, ipc, pc int32) (int32, error) {
	regs := f.registers
	a := int32(inst.A)

	nres := int32(2)
	if n, ok := inst.K.(int); ok && n > 0 {
		nres = int32(n)
	}
	if a+3+nres > int32(len(regs)) {
		return pc, p.faultf(proto, ipc, "loop variables exceed the register file")
	}

	if hooks := &p.settings.Hooks; hooks.Interrupt != nil {
		hooks.Interrupt(&HookContext{Proto: proto, PC: ipc, Registers: regs})
	}

	switch it := regs[a].(type) {
	case *Closure, *Builtin:
		results, err := p.callValue(it, []Value{regs[a+1], regs[a+2]})
		if err != nil {
			return pc, p.fault(proto, ipc, err)
		}
		for i := int32(0); i < nres; i++ {
			if int(i) < len(results) {
				regs[a+3+i] = results[i]
			} else {
				regs[a+3+i] = nil
			}
		}
		if regs[a+3] == nil {
			return pc + 1, nil // past the aux word
		}
		regs[a+2] = regs[a+3]
		return pc + inst.D, nil

	case *Table:
		if !p.settings.GeneralizedIteration {
			return pc, p.faultf(proto, ipc, "attempt to iterate over a table value")
		}
		if f.iterators == nil {
			f.iterators = make(map[int32]*pullIterator)
		}
		adapter, ok := f.iterators[ipc]
		if !ok {
			adapter = newPullIterator(it)
			f.iterators[ipc] = adapter
		}
		k, v, more := adapter.step()
		if !more {
			delete(f.iterators, ipc)
			return pc + 1, nil
		}
		regs[a+3] = k
		if nres > 1 {
			regs[a+4] = v
		}
		for i := int32(2); i < nres; i++ {
			regs[a+3+i] = nil
		}
		regs[a+2] = k
		return pc + inst.D, nil

	default:
		return pc, p.faultf(proto, ipc, "attempt to iterate over a %s value", KindOf(it))
	}
}
