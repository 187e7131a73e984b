package luau

// ---------------------------------------------------------------------------
// Opcode set
// ---------------------------------------------------------------------------

// Opcode identifies one of the 83 instruction kinds.
type Opcode uint8

const (
	OpNOP Opcode = iota
	OpBREAK
	OpLOADNIL
	OpLOADB
	OpLOADN
	OpLOADK
	OpMOVE
	OpGETGLOBAL
	OpSETGLOBAL
	OpGETUPVAL
	OpSETUPVAL
	OpCLOSEUPVALS
	OpGETIMPORT
	OpGETTABLE
	OpSETTABLE
	OpGETTABLEKS
	OpSETTABLEKS
	OpGETTABLEN
	OpSETTABLEN
	OpNEWCLOSURE
	OpNAMECALL
	OpCALL
	OpRETURN
	OpJUMP
	OpJUMPBACK
	OpJUMPIF
	OpJUMPIFNOT
	OpJUMPIFEQ
	OpJUMPIFLE
	OpJUMPIFLT
	OpJUMPIFNOTEQ
	OpJUMPIFNOTLE
	OpJUMPIFNOTLT
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpMOD
	OpPOW
	OpADDK
	OpSUBK
	OpMULK
	OpDIVK
	OpMODK
	OpPOWK
	OpAND
	OpOR
	OpANDK
	OpORK
	OpCONCAT
	OpNOT
	OpMINUS
	OpLENGTH
	OpNEWTABLE
	OpDUPTABLE
	OpSETLIST
	OpFORNPREP
	OpFORNLOOP
	OpFORGLOOP
	OpFORGPREPINEXT
	OpFASTCALL3
	OpFORGPREPNEXT
	OpDEPFORGLOOPNEXT
	OpGETVARARGS
	OpDUPCLOSURE
	OpPREPVARARGS
	OpLOADKX
	OpJUMPX
	OpFASTCALL
	OpCOVERAGE
	OpCAPTURE
	OpSUBRK
	OpDIVRK
	OpFASTCALL1
	OpFASTCALL2
	OpFASTCALL2K
	OpFORGPREP
	OpJUMPXEQKNIL
	OpJUMPXEQKB
	OpJUMPXEQKN
	OpJUMPXEQKS
	OpIDIV
	OpIDIVK

	opcodeCount
)

// Operand layouts. The layout determines which fields of the 32-bit
// instruction word carry operands.
const (
	modeNone = iota // no operands
	modeA           // A
	modeAB          // A, B
	modeABC         // A, B, C
	modeAD          // A, signed 16-bit D
	modeAE          // signed 24-bit E
)

// Constant-reference modes. The mode determines where an instruction's
// constant operand comes from during the resolution pass.
const (
	kmodeNone      = iota // no constant
	kmodeAux              // aux word indexes the constant table
	kmodeC                // C field indexes the constant table
	kmodeD                // D field indexes the constant table
	kmodeAuxImport        // aux word packs an import path (2-bit count, 3x10-bit ids)
	kmodeAuxBool          // aux low bit is a boolean, high bit negates
	kmodeAuxNum24         // aux low 24 bits index the constant table, high bit negates
	kmodeB                // B field indexes the constant table
	kmodeAuxNum16         // aux low 16 bits carry a count
)

type opInfo struct {
	Name   string
	Mode   uint8
	KMode  uint8
	HasAux bool
}

// opList describes every opcode's operand layout, constant mode, and whether
// an auxiliary word follows the instruction.
var opList = [opcodeCount]opInfo{
	{"NOP", modeNone, kmodeNone, false},
	{"BREAK", modeNone, kmodeNone, false},
	{"LOADNIL", modeA, kmodeNone, false},
	{"LOADB", modeABC, kmodeNone, false},
	{"LOADN", modeAD, kmodeNone, false},
	{"LOADK", modeAD, kmodeD, false},
	{"MOVE", modeAB, kmodeNone, false},
	{"GETGLOBAL", modeA, kmodeAux, true},
	{"SETGLOBAL", modeA, kmodeAux, true},
	{"GETUPVAL", modeAB, kmodeNone, false},
	{"SETUPVAL", modeAB, kmodeNone, false},
	{"CLOSEUPVALS", modeA, kmodeNone, false},
	{"GETIMPORT", modeAD, kmodeAuxImport, true},
	{"GETTABLE", modeABC, kmodeNone, false},
	{"SETTABLE", modeABC, kmodeNone, false},
	{"GETTABLEKS", modeABC, kmodeAux, true},
	{"SETTABLEKS", modeABC, kmodeAux, true},
	{"GETTABLEN", modeABC, kmodeNone, false},
	{"SETTABLEN", modeABC, kmodeNone, false},
	{"NEWCLOSURE", modeAD, kmodeNone, false},
	{"NAMECALL", modeABC, kmodeAux, true},
	{"CALL", modeABC, kmodeNone, false},
	{"RETURN", modeAB, kmodeNone, false},
	{"JUMP", modeAD, kmodeNone, false},
	{"JUMPBACK", modeAD, kmodeNone, false},
	{"JUMPIF", modeAD, kmodeNone, false},
	{"JUMPIFNOT", modeAD, kmodeNone, false},
	{"JUMPIFEQ", modeAD, kmodeNone, true},
	{"JUMPIFLE", modeAD, kmodeNone, true},
	{"JUMPIFLT", modeAD, kmodeNone, true},
	{"JUMPIFNOTEQ", modeAD, kmodeNone, true},
	{"JUMPIFNOTLE", modeAD, kmodeNone, true},
	{"JUMPIFNOTLT", modeAD, kmodeNone, true},
	{"ADD", modeABC, kmodeNone, false},
	{"SUB", modeABC, kmodeNone, false},
	{"MUL", modeABC, kmodeNone, false},
	{"DIV", modeABC, kmodeNone, false},
	{"MOD", modeABC, kmodeNone, false},
	{"POW", modeABC, kmodeNone, false},
	{"ADDK", modeABC, kmodeC, false},
	{"SUBK", modeABC, kmodeC, false},
	{"MULK", modeABC, kmodeC, false},
	{"DIVK", modeABC, kmodeC, false},
	{"MODK", modeABC, kmodeC, false},
	{"POWK", modeABC, kmodeC, false},
	{"AND", modeABC, kmodeNone, false},
	{"OR", modeABC, kmodeNone, false},
	{"ANDK", modeABC, kmodeC, false},
	{"ORK", modeABC, kmodeC, false},
	{"CONCAT", modeABC, kmodeNone, false},
	{"NOT", modeAB, kmodeNone, false},
	{"MINUS", modeAB, kmodeNone, false},
	{"LENGTH", modeAB, kmodeNone, false},
	{"NEWTABLE", modeAB, kmodeNone, true},
	{"DUPTABLE", modeAD, kmodeD, false},
	{"SETLIST", modeABC, kmodeNone, true},
	{"FORNPREP", modeAD, kmodeNone, false},
	{"FORNLOOP", modeAD, kmodeNone, false},
	{"FORGLOOP", modeAD, kmodeAuxNum16, true},
	{"FORGPREP_INEXT", modeAD, kmodeNone, false},
	{"FASTCALL3", modeABC, kmodeAux, true},
	{"FORGPREP_NEXT", modeAD, kmodeNone, false},
	{"DEP_FORGLOOP_NEXT", modeNone, kmodeNone, false},
	{"GETVARARGS", modeAB, kmodeNone, false},
	{"DUPCLOSURE", modeAD, kmodeD, false},
	{"PREPVARARGS", modeA, kmodeNone, false},
	{"LOADKX", modeA, kmodeAux, true},
	{"JUMPX", modeAE, kmodeNone, false},
	{"FASTCALL", modeABC, kmodeNone, false},
	{"COVERAGE", modeAE, kmodeNone, false},
	{"CAPTURE", modeAB, kmodeNone, false},
	{"SUBRK", modeABC, kmodeB, false},
	{"DIVRK", modeABC, kmodeB, false},
	{"FASTCALL1", modeABC, kmodeNone, false},
	{"FASTCALL2", modeABC, kmodeNone, true},
	{"FASTCALL2K", modeABC, kmodeAux, true},
	{"FORGPREP", modeAD, kmodeNone, false},
	{"JUMPXEQKNIL", modeAD, kmodeAuxBool, true},
	{"JUMPXEQKB", modeAD, kmodeAuxBool, true},
	{"JUMPXEQKN", modeAD, kmodeAuxNum24, true},
	{"JUMPXEQKS", modeAD, kmodeAuxNum24, true},
	{"IDIV", modeABC, kmodeNone, false},
	{"IDIVK", modeABC, kmodeC, false},
}

// String returns the opcode's mnemonic, or a hex form for unknown values.
func (op Opcode) String() string {
	if op < opcodeCount {
		return opList[op].Name
	}
	return "OP_0x" + hexByte(uint8(op))
}

func hexByte(b uint8) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0xF]})
}
