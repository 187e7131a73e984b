package luau

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembler
// ---------------------------------------------------------------------------

// Disassemble returns a human-readable listing of every prototype in the
// module.
func (m *Module) Disassemble() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("; Luau bytecode v%d", m.Version))
	if m.Version >= 4 {
		sb.WriteString(fmt.Sprintf(" (types v%d)", m.TypesVersion))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("; %d strings, %d prototypes, entry %d\n\n",
		len(m.Strings), len(m.Protos), m.Main.ID))

	for _, p := range m.Protos {
		m.disassembleProto(&sb, p)
	}
	return sb.String()
}

func (m *Module) disassembleProto(sb *strings.Builder, p *Prototype) {
	name := p.DebugName
	if name == "" {
		name = "(anonymous)"
	}
	marker := ""
	if p == m.Main {
		marker = " [entry]"
	}
	sb.WriteString(fmt.Sprintf("; === proto %d: %s%s ===\n", p.ID, name, marker))
	sb.WriteString(fmt.Sprintf("; stack=%d params=%d upvalues=%d vararg=%v\n",
		p.MaxStackSize, p.NumParams, p.NumUpvalues, p.IsVararg))

	if len(p.Constants) > 0 {
		sb.WriteString("; constants:\n")
		for i, k := range p.Constants {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, formatConstant(k)))
		}
	}

	for i, inst := range p.Code {
		if inst == nil {
			continue // aux word, shown with its owner
		}
		sb.WriteString(fmt.Sprintf("%5d  %-16s %s", i, inst.Opcode, formatOperands(inst)))
		if line := p.lineAt(int32(i)); line != 0 {
			sb.WriteString(fmt.Sprintf("  ; line %d", line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func formatConstant(k Value) string {
	switch v := k.(type) {
	case nil:
		return "nil"
	case bool:
		return fmt.Sprintf("%v", v)
	case float64:
		return numberToString(v)
	case string:
		display := v
		if len(display) > 40 {
			display = display[:37] + "..."
		}
		return fmt.Sprintf("%q", display)
	case Vector:
		return fmt.Sprintf("vector(%g, %g, %g, %g)", v[0], v[1], v[2], v[3])
	case importID:
		return fmt.Sprintf("import(0x%08X)", uint32(v))
	case *tableTemplate:
		return fmt.Sprintf("table(%d keys)", len(v.Keys))
	case closureID:
		return fmt.Sprintf("closure(proto %d)", uint32(v))
	default:
		return fmt.Sprintf("<%s>", KindOf(k))
	}
}

func formatOperands(inst *Instruction) string {
	info := &opList[inst.Opcode]
	var parts []string

	switch info.Mode {
	case modeA:
		parts = append(parts, fmt.Sprintf("A=%d", inst.A))
	case modeAB:
		parts = append(parts, fmt.Sprintf("A=%d", inst.A), fmt.Sprintf("B=%d", inst.B))
	case modeABC:
		parts = append(parts,
			fmt.Sprintf("A=%d", inst.A),
			fmt.Sprintf("B=%d", inst.B),
			fmt.Sprintf("C=%d", inst.C))
	case modeAD:
		parts = append(parts, fmt.Sprintf("A=%d", inst.A), fmt.Sprintf("D=%d", inst.D))
	case modeAE:
		parts = append(parts, fmt.Sprintf("E=%d", inst.E))
	}
	if inst.HasAux {
		parts = append(parts, fmt.Sprintf("aux=0x%08X", inst.Aux))
	}

	switch info.KMode {
	case kmodeNone:
	case kmodeAuxImport:
		path := inst.K0
		if inst.KC > 1 {
			path += "." + inst.K1
		}
		if inst.KC > 2 {
			path += "." + inst.K2
		}
		parts = append(parts, fmt.Sprintf("K=%s", path))
	case kmodeAuxNum16:
		parts = append(parts, fmt.Sprintf("K=%v", inst.K))
	default:
		parts = append(parts, fmt.Sprintf("K=%s", formatConstant(inst.K)))
	}
	return strings.Join(parts, " ")
}
