package luau

import (
	"encoding/binary"
	"math"
)

// ---------------------------------------------------------------------------
// Test bytecode builder
// ---------------------------------------------------------------------------

// bcWriter accumulates a little-endian bytecode buffer.
type bcWriter struct {
	buf []byte
}

func (w *bcWriter) b(v byte) {
	w.buf = append(w.buf, v)
}

func (w *bcWriter) w32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *bcWriter) f32(v float32) {
	w.w32(math.Float32bits(v))
}

func (w *bcWriter) f64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *bcWriter) varint(v uint32) {
	for v >= 0x80 {
		w.b(byte(v) | 0x80)
		v >>= 7
	}
	w.b(byte(v))
}

func (w *bcWriter) str(s string) {
	w.varint(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Instruction word encoders.

func insABC(op Opcode, a, b, c uint8) uint32 {
	return uint32(op) | uint32(a)<<8 | uint32(b)<<16 | uint32(c)<<24
}

func insAD(op Opcode, a uint8, d int16) uint32 {
	return uint32(op) | uint32(a)<<8 | uint32(uint16(d))<<16
}

func insE(op Opcode, e int32) uint32 {
	return uint32(op) | uint32(e&0xFFFFFF)<<8
}

// Constant specs for protoSpec.consts.

type kNil struct{}
type kBool bool
type kNum float64
type kStr uint32 // 1-based string table reference
type kImport uint32
type kClosure uint32
type kVector [4]float32

// protoSpec describes one prototype for buildModule.
type protoSpec struct {
	maxStack  uint8
	params    uint8
	nups      uint8
	vararg    bool
	code      []uint32
	consts    []any
	children  []uint32
	debugName uint32 // 1-based string table reference, 0 for none
}

// buildModule serializes a version-3 module from prototype specs.
func buildModule(strs []string, protos []protoSpec, main uint32) []byte {
	w := &bcWriter{}
	w.b(3) // version

	w.varint(uint32(len(strs)))
	for _, s := range strs {
		w.str(s)
	}

	w.varint(uint32(len(protos)))
	for _, p := range protos {
		w.b(p.maxStack)
		w.b(p.params)
		w.b(p.nups)
		if p.vararg {
			w.b(1)
		} else {
			w.b(0)
		}

		w.varint(uint32(len(p.code)))
		for _, word := range p.code {
			w.w32(word)
		}

		w.varint(uint32(len(p.consts)))
		for _, k := range p.consts {
			switch v := k.(type) {
			case kNil:
				w.b(constNil)
			case kBool:
				w.b(constBoolean)
				if v {
					w.b(1)
				} else {
					w.b(0)
				}
			case kNum:
				w.b(constNumber)
				w.f64(float64(v))
			case kStr:
				w.b(constString)
				w.varint(uint32(v))
			case kImport:
				w.b(constImport)
				w.w32(uint32(v))
			case kClosure:
				w.b(constClosure)
				w.varint(uint32(v))
			case kVector:
				w.b(constVector)
				for _, lane := range v {
					w.f32(lane)
				}
			default:
				panic("unhandled constant spec")
			}
		}

		w.varint(uint32(len(p.children)))
		for _, c := range p.children {
			w.varint(c)
		}

		w.varint(0)           // line defined
		w.varint(p.debugName) // debug name
		w.b(0)                // no line info
		w.b(0)                // no debug info
	}

	w.varint(main)
	return w.buf
}

// importAux packs an import path aux word from constant-table indexes.
func importAux(ids ...uint32) uint32 {
	aux := uint32(len(ids)) << 30
	shifts := []uint{20, 10, 0}
	for i, id := range ids {
		aux |= id << shifts[i]
	}
	return aux
}
