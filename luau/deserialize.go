package luau

import "fmt"

// ---------------------------------------------------------------------------
// Module deserialization
// ---------------------------------------------------------------------------

const (
	// Version byte 0 marks a module whose compilation failed; the rest of
	// the buffer is the error text, not bytecode.
	versionCompileError = 0

	minBytecodeVersion = 3
	maxBytecodeVersion = 6
)

// moduleReader deserializes one bytecode buffer.
type moduleReader struct {
	cur      *cursor
	settings *Settings
	module   *Module
}

// Deserialize parses a compiled bytecode buffer into a Module. The settings
// control vector width and load-time import resolution. The whole buffer
// must be consumed; trailing bytes are an error.
func Deserialize(data []byte, settings *Settings) (*Module, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	r := &moduleReader{
		cur:      newCursor(data),
		settings: settings,
		module:   &Module{},
	}
	if err := r.readAll(); err != nil {
		return nil, err
	}
	return r.module, nil
}

func (r *moduleReader) readAll() error {
	version, err := r.cur.readByte()
	if err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if version == versionCompileError {
		return fmt.Errorf("%w: bytecode compilation failed", ErrCorruptBytecode)
	}
	if version < minBytecodeVersion || version > maxBytecodeVersion {
		return fmt.Errorf("%w: unsupported bytecode version %d (expected %d..%d)",
			ErrCorruptBytecode, version, minBytecodeVersion, maxBytecodeVersion)
	}
	r.module.Version = version

	if version >= 4 {
		tv, err := r.cur.readByte()
		if err != nil {
			return fmt.Errorf("failed to read types version: %w", err)
		}
		r.module.TypesVersion = tv

		// Userdata type remapping table, present under types version 3.
		if tv == 3 {
			for {
				more, err := r.cur.readBool()
				if err != nil {
					return fmt.Errorf("failed to read userdata remap: %w", err)
				}
				if !more {
					break
				}
				if _, err := r.cur.readVarInt(); err != nil {
					return fmt.Errorf("failed to read userdata remap: %w", err)
				}
			}
		}
	}

	if err := r.readStringTable(); err != nil {
		return err
	}

	protoCount, err := r.cur.readVarInt()
	if err != nil {
		return fmt.Errorf("failed to read prototype count: %w", err)
	}
	r.module.Protos = make([]*Prototype, 0, protoCount)
	for i := uint32(0); i < protoCount; i++ {
		proto, err := r.readProto(i, protoCount)
		if err != nil {
			return fmt.Errorf("prototype %d: %w", i, err)
		}
		r.module.Protos = append(r.module.Protos, proto)
	}

	mainID, err := r.cur.readVarInt()
	if err != nil {
		return fmt.Errorf("failed to read main prototype id: %w", err)
	}
	if mainID >= protoCount {
		return fmt.Errorf("%w: main prototype id %d out of range (%d prototypes)",
			ErrCorruptBytecode, mainID, protoCount)
	}
	r.module.Main = r.module.Protos[mainID]

	if !r.cur.atEnd() {
		return fmt.Errorf("%w: %d trailing bytes after module", ErrCorruptBytecode, r.cur.remaining())
	}
	return nil
}

func (r *moduleReader) readStringTable() error {
	count, err := r.cur.readVarInt()
	if err != nil {
		return fmt.Errorf("failed to read string table size: %w", err)
	}
	if int(count) > r.cur.remaining() {
		return fmt.Errorf("%w: string table size %d exceeds remaining %d bytes",
			ErrCorruptBytecode, count, r.cur.remaining())
	}
	r.module.Strings = make([]string, count)
	for i := uint32(0); i < count; i++ {
		s, err := r.cur.readString()
		if err != nil {
			return fmt.Errorf("failed to read string %d: %w", i, err)
		}
		r.module.Strings[i] = s
	}
	return nil
}

// stringRef resolves a 1-based string table reference; 0 means absent.
func (r *moduleReader) stringRef(id uint32) (string, error) {
	if id == 0 {
		return "", nil
	}
	if int(id) > len(r.module.Strings) {
		return "", fmt.Errorf("%w: string reference %d out of range (%d strings)",
			ErrCorruptBytecode, id, len(r.module.Strings))
	}
	return r.module.Strings[id-1], nil
}

func (r *moduleReader) readProto(id, protoCount uint32) (*Prototype, error) {
	p := &Prototype{ID: id}

	var err error
	if p.MaxStackSize, err = r.cur.readByte(); err != nil {
		return nil, fmt.Errorf("failed to read max stack size: %w", err)
	}
	if p.NumParams, err = r.cur.readByte(); err != nil {
		return nil, fmt.Errorf("failed to read parameter count: %w", err)
	}
	if p.NumUpvalues, err = r.cur.readByte(); err != nil {
		return nil, fmt.Errorf("failed to read upvalue count: %w", err)
	}
	vararg, err := r.cur.readBool()
	if err != nil {
		return nil, fmt.Errorf("failed to read vararg flag: %w", err)
	}
	p.IsVararg = vararg

	if r.module.Version >= 4 {
		if p.Flags, err = r.cur.readByte(); err != nil {
			return nil, fmt.Errorf("failed to read flags: %w", err)
		}
		typeSize, err := r.cur.readVarInt()
		if err != nil {
			return nil, fmt.Errorf("failed to read type info size: %w", err)
		}
		if err := r.cur.skip(int(typeSize)); err != nil {
			return nil, fmt.Errorf("failed to skip type info: %w", err)
		}
	}

	if err := r.readCode(p); err != nil {
		return nil, err
	}
	if err := r.readConstants(p); err != nil {
		return nil, err
	}

	childCount, err := r.cur.readVarInt()
	if err != nil {
		return nil, fmt.Errorf("failed to read child count: %w", err)
	}
	p.Children = make([]uint32, childCount)
	for i := uint32(0); i < childCount; i++ {
		child, err := r.cur.readVarInt()
		if err != nil {
			return nil, fmt.Errorf("failed to read child prototype id: %w", err)
		}
		if child >= protoCount {
			return nil, fmt.Errorf("%w: child prototype id %d out of range (%d prototypes)",
				ErrCorruptBytecode, child, protoCount)
		}
		p.Children[i] = child
	}

	if p.LineDefined, err = r.cur.readVarInt(); err != nil {
		return nil, fmt.Errorf("failed to read line defined: %w", err)
	}
	nameID, err := r.cur.readVarInt()
	if err != nil {
		return nil, fmt.Errorf("failed to read debug name: %w", err)
	}
	if p.DebugName, err = r.stringRef(nameID); err != nil {
		return nil, err
	}

	hasLines, err := r.cur.readBool()
	if err != nil {
		return nil, fmt.Errorf("failed to read line info flag: %w", err)
	}
	if hasLines {
		if err := r.readLineInfo(p); err != nil {
			return nil, err
		}
	}

	hasDebug, err := r.cur.readBool()
	if err != nil {
		return nil, fmt.Errorf("failed to read debug info flag: %w", err)
	}
	if hasDebug {
		if err := r.skipDebugInfo(); err != nil {
			return nil, err
		}
	}

	if err := r.resolveConstantRefs(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *moduleReader) readCode(p *Prototype) error {
	sizeCode, err := r.cur.readVarInt()
	if err != nil {
		return fmt.Errorf("failed to read code size: %w", err)
	}
	if int(sizeCode) > r.cur.remaining()/4 {
		return fmt.Errorf("%w: code size %d exceeds remaining %d bytes",
			ErrCorruptBytecode, sizeCode, r.cur.remaining())
	}
	p.SizeCode = sizeCode
	p.Code = make([]*Instruction, 0, sizeCode)

	for uint32(len(p.Code)) < sizeCode {
		word, err := r.cur.readWord()
		if err != nil {
			return fmt.Errorf("failed to read instruction %d: %w", len(p.Code), err)
		}
		inst, err := decodeInstruction(word)
		if err != nil {
			return err
		}
		p.Code = append(p.Code, inst)
		if inst.HasAux {
			if uint32(len(p.Code)) >= sizeCode {
				return fmt.Errorf("%w: %s at word %d is missing its aux word",
					ErrCorruptBytecode, inst.Opcode, len(p.Code)-1)
			}
			aux, err := r.cur.readWord()
			if err != nil {
				return fmt.Errorf("failed to read aux word %d: %w", len(p.Code), err)
			}
			inst.Aux = aux
			// Placeholder keeps Code indexes aligned with word offsets.
			p.Code = append(p.Code, nil)
		}
	}
	return nil
}

// decodeInstruction splits a 32-bit word into opcode and operands per the
// opcode's layout.
func decodeInstruction(word uint32) (*Instruction, error) {
	op := Opcode(word & 0xFF)
	if op >= opcodeCount {
		return nil, fmt.Errorf("%w: opcode 0x%02X", ErrUnsupportedOpcode, uint8(op))
	}
	info := &opList[op]
	inst := &Instruction{Opcode: op, HasAux: info.HasAux}

	switch info.Mode {
	case modeA:
		inst.A = uint8(word >> 8)
	case modeAB:
		inst.A = uint8(word >> 8)
		inst.B = uint8(word >> 16)
	case modeABC:
		inst.A = uint8(word >> 8)
		inst.B = uint8(word >> 16)
		inst.C = uint8(word >> 24)
	case modeAD:
		inst.A = uint8(word >> 8)
		inst.D = int32(int16(word >> 16))
	case modeAE:
		inst.E = int32(word >> 8)
		if inst.E >= 0x800000 {
			inst.E -= 0x1000000
		}
	}
	return inst, nil
}

// Constant kind tags.
const (
	constNil = iota
	constBoolean
	constNumber
	constString
	constImport
	constTable
	constClosure
	constVector
)

func (r *moduleReader) readConstants(p *Prototype) error {
	sizeK, err := r.cur.readVarInt()
	if err != nil {
		return fmt.Errorf("failed to read constant count: %w", err)
	}
	if int(sizeK) > r.cur.remaining() {
		return fmt.Errorf("%w: constant count %d exceeds remaining %d bytes",
			ErrCorruptBytecode, sizeK, r.cur.remaining())
	}
	p.Constants = make([]Value, sizeK)

	for i := uint32(0); i < sizeK; i++ {
		tag, err := r.cur.readByte()
		if err != nil {
			return fmt.Errorf("failed to read constant %d tag: %w", i, err)
		}
		switch tag {
		case constNil:
			p.Constants[i] = nil

		case constBoolean:
			b, err := r.cur.readBool()
			if err != nil {
				return fmt.Errorf("failed to read boolean constant %d: %w", i, err)
			}
			p.Constants[i] = b

		case constNumber:
			f, err := r.cur.readFloat64()
			if err != nil {
				return fmt.Errorf("failed to read number constant %d: %w", i, err)
			}
			p.Constants[i] = f

		case constString:
			id, err := r.cur.readVarInt()
			if err != nil {
				return fmt.Errorf("failed to read string constant %d: %w", i, err)
			}
			if id == 0 || int(id) > len(r.module.Strings) {
				return fmt.Errorf("%w: string constant %d references string %d (%d strings)",
					ErrCorruptBytecode, i, id, len(r.module.Strings))
			}
			p.Constants[i] = r.module.Strings[id-1]

		case constImport:
			word, err := r.cur.readWord()
			if err != nil {
				return fmt.Errorf("failed to read import constant %d: %w", i, err)
			}
			p.Constants[i] = importID(word)

		case constTable:
			keyCount, err := r.cur.readVarInt()
			if err != nil {
				return fmt.Errorf("failed to read table constant %d: %w", i, err)
			}
			tmpl := &tableTemplate{Keys: make([]Value, keyCount)}
			for j := uint32(0); j < keyCount; j++ {
				keyID, err := r.cur.readVarInt()
				if err != nil {
					return fmt.Errorf("failed to read table constant %d key: %w", i, err)
				}
				if keyID >= i {
					return fmt.Errorf("%w: table constant %d references later constant %d",
						ErrCorruptBytecode, i, keyID)
				}
				tmpl.Keys[j] = p.Constants[keyID]
			}
			p.Constants[i] = tmpl

		case constClosure:
			protoID, err := r.cur.readVarInt()
			if err != nil {
				return fmt.Errorf("failed to read closure constant %d: %w", i, err)
			}
			p.Constants[i] = closureID(protoID)

		case constVector:
			var v Vector
			for lane := 0; lane < 4; lane++ {
				f, err := r.cur.readFloat32()
				if err != nil {
					return fmt.Errorf("failed to read vector constant %d: %w", i, err)
				}
				v[lane] = f
			}
			if r.settings.VectorSize == 3 {
				v[3] = 0
			}
			p.Constants[i] = v

		default:
			return fmt.Errorf("%w: unknown constant kind %d", ErrCorruptBytecode, tag)
		}
	}
	return nil
}

func (r *moduleReader) readLineInfo(p *Prototype) error {
	gapLog2, err := r.cur.readByte()
	if err != nil {
		return fmt.Errorf("failed to read line gap: %w", err)
	}
	if gapLog2 > 31 {
		return fmt.Errorf("%w: line gap log2 %d out of range", ErrCorruptBytecode, gapLog2)
	}

	size := p.SizeCode
	deltas := make([]uint8, size)
	var lastOffset uint8
	for i := uint32(0); i < size; i++ {
		b, err := r.cur.readByte()
		if err != nil {
			return fmt.Errorf("failed to read line delta %d: %w", i, err)
		}
		lastOffset += b
		deltas[i] = lastOffset
	}

	intervals := uint32(1)
	if size > 0 {
		intervals = ((size - 1) >> gapLog2) + 1
	}
	baselines := make([]uint32, intervals)
	var lastLine uint32
	for i := uint32(0); i < intervals; i++ {
		w, err := r.cur.readWord()
		if err != nil {
			return fmt.Errorf("failed to read line baseline %d: %w", i, err)
		}
		lastLine += w
		baselines[i] = lastLine
	}

	p.InstLineInfo = make([]uint32, size)
	for i := uint32(0); i < size; i++ {
		p.InstLineInfo[i] = baselines[i>>gapLog2] + uint32(deltas[i])
	}
	return nil
}

// skipDebugInfo walks past local and upvalue debug records, which the
// interpreter does not retain.
func (r *moduleReader) skipDebugInfo() error {
	localCount, err := r.cur.readVarInt()
	if err != nil {
		return fmt.Errorf("failed to read debug local count: %w", err)
	}
	for i := uint32(0); i < localCount; i++ {
		for j := 0; j < 3; j++ { // name, start pc, end pc
			if _, err := r.cur.readVarInt(); err != nil {
				return fmt.Errorf("failed to read debug local %d: %w", i, err)
			}
		}
		if _, err := r.cur.readByte(); err != nil {
			return fmt.Errorf("failed to read debug local %d register: %w", i, err)
		}
	}

	upvalCount, err := r.cur.readVarInt()
	if err != nil {
		return fmt.Errorf("failed to read debug upvalue count: %w", err)
	}
	for i := uint32(0); i < upvalCount; i++ {
		if _, err := r.cur.readVarInt(); err != nil {
			return fmt.Errorf("failed to read debug upvalue %d: %w", i, err)
		}
	}
	return nil
}

// resolveConstantRefs is the second decode pass: it materializes each
// instruction's constant operand per its constant mode.
func (r *moduleReader) resolveConstantRefs(p *Prototype) error {
	k := p.Constants
	kAt := func(id uint32) (Value, error) {
		if int(id) >= len(k) {
			return nil, fmt.Errorf("%w: constant index %d out of range (%d constants)",
				ErrCorruptBytecode, id, len(k))
		}
		return k[id], nil
	}

	for _, inst := range p.Code {
		if inst == nil {
			continue
		}
		var err error
		switch opList[inst.Opcode].KMode {
		case kmodeNone:

		case kmodeAux:
			inst.K, err = kAt(inst.Aux)

		case kmodeC:
			inst.K, err = kAt(uint32(inst.C))

		case kmodeD:
			if inst.D < 0 {
				return fmt.Errorf("%w: negative constant index %d", ErrCorruptBytecode, inst.D)
			}
			inst.K, err = kAt(uint32(inst.D))

		case kmodeAuxImport:
			err = r.resolveImportRef(inst, k)

		case kmodeAuxBool:
			inst.K = inst.Aux&1 == 1
			inst.KN = inst.Aux>>31 == 1

		case kmodeAuxNum24:
			inst.K, err = kAt(inst.Aux & 0xFFFFFF)
			inst.KN = inst.Aux>>31 == 1

		case kmodeB:
			inst.K, err = kAt(uint32(inst.B))

		case kmodeAuxNum16:
			inst.K = int(inst.Aux & 0xFFFF)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveImportRef unpacks the aux word's import path (2-bit segment count,
// three 10-bit string-constant ids) and, when import constants are enabled,
// resolves the path against the static environment once.
func (r *moduleReader) resolveImportRef(inst *Instruction, k []Value) error {
	stringAt := func(id uint32) (string, error) {
		if int(id) >= len(k) {
			return "", fmt.Errorf("%w: import segment %d out of range (%d constants)",
				ErrCorruptBytecode, id, len(k))
		}
		s, ok := k[id].(string)
		if !ok {
			return "", fmt.Errorf("%w: import segment %d is %s, want string",
				ErrCorruptBytecode, id, KindOf(k[id]))
		}
		return s, nil
	}

	count := uint8(inst.Aux >> 30)
	if count < 1 || count > 3 {
		return fmt.Errorf("%w: import path has %d segments", ErrCorruptBytecode, count)
	}
	inst.KC = count

	var err error
	if inst.K0, err = stringAt(inst.Aux >> 20 & 0x3FF); err != nil {
		return err
	}
	if count > 1 {
		if inst.K1, err = stringAt(inst.Aux >> 10 & 0x3FF); err != nil {
			return err
		}
	}
	if count > 2 {
		if inst.K2, err = stringAt(inst.Aux & 0x3FF); err != nil {
			return err
		}
	}

	if r.settings.UseImportConstants {
		inst.K = walkImport(r.settings.StaticEnvironment, inst)
	}
	return nil
}

// walkImport follows the unpacked import path through an environment table.
// A missing intermediate yields nil.
func walkImport(env *Table, inst *Instruction) Value {
	v := env.Get(inst.K0)
	if inst.KC > 1 {
		t, ok := v.(*Table)
		if !ok {
			return nil
		}
		v = t.Get(inst.K1)
	}
	if inst.KC > 2 {
		t, ok := v.(*Table)
		if !ok {
			return nil
		}
		v = t.Get(inst.K2)
	}
	return v
}
