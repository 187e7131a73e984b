package luau

// ---------------------------------------------------------------------------
// Deserialized module layout
// ---------------------------------------------------------------------------

// Module is a fully deserialized bytecode module: the string table, every
// prototype, and the designated entry prototype.
type Module struct {
	Version      uint8
	TypesVersion uint8
	Strings      []string
	Protos       []*Prototype
	Main         *Prototype
}

// Prototype is one compiled function body.
type Prototype struct {
	ID           uint32
	MaxStackSize uint8
	NumParams    uint8
	NumUpvalues  uint8
	IsVararg     bool
	Flags        byte

	// Code holds one entry per 32-bit word. Words consumed as auxiliary data
	// keep a nil placeholder so jump offsets stay word-accurate.
	Code     []*Instruction
	SizeCode uint32

	Constants []Value
	Children  []uint32 // ids into Module.Protos

	LineDefined uint32
	DebugName   string

	// InstLineInfo maps each code word to a source line; empty when the
	// module was compiled without line information.
	InstLineInfo []uint32
}

// lineAt returns the source line for the word at pc, or 0 when unknown.
func (p *Prototype) lineAt(pc int32) uint32 {
	if pc < 0 || int(pc) >= len(p.InstLineInfo) {
		return 0
	}
	return p.InstLineInfo[pc]
}

// Instruction is one decoded instruction word plus its resolved constant
// operand. Iteration and coverage bookkeeping that older designs kept in
// identity-keyed side tables lives directly on the record.
type Instruction struct {
	Opcode Opcode
	A      uint8
	B      uint8
	C      uint8
	D      int32 // signed 16-bit operand
	E      int32 // signed 24-bit operand
	Aux    uint32
	HasAux bool

	// K is the constant operand resolved per the opcode's constant mode.
	K Value
	// KN negates the comparison for the JUMPXEQK family.
	KN bool
	// Import path unpacked from the aux word: KC segments in K0..K2.
	KC         uint8
	K0, K1, K2 string

	// Hits counts executions of a COVERAGE instruction.
	Hits uint64
}

// tableTemplate is the constant form of a table literal with known keys.
type tableTemplate struct {
	Keys []Value
}

// closureID is the constant form of a child closure reference.
type closureID uint32

// importID is the constant form of a packed import path word.
type importID uint32
