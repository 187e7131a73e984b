package luau

import (
	"fmt"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Loaded programs
// ---------------------------------------------------------------------------

// Program is a loaded module bound to an environment, ready to run. A
// Program is single-flight: Call runs on the caller's goroutine; Close may
// be called from any goroutine to cancel cooperatively.
type Program struct {
	module   *Module
	settings *Settings
	env      *Table
	root     *Closure
	alive    atomic.Bool
}

// Load binds a deserialized module to an environment table. A nil env gets
// a fresh empty table; nil settings get defaults.
func Load(m *Module, env *Table, settings *Settings) (*Program, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Main == nil {
		return nil, fmt.Errorf("%w: module has no entry prototype", ErrCorruptBytecode)
	}
	if env == nil {
		env = NewTable(0)
	}

	p := &Program{module: m, settings: settings, env: env}
	p.alive.Store(true)

	upvals := make([]*Upvalue, m.Main.NumUpvalues)
	for i := range upvals {
		upvals[i] = closedUpvalue(nil)
	}
	p.root = &Closure{proto: m.Main, upvalues: upvals, program: p}
	return p, nil
}

// LoadBytecode deserializes and loads in one step.
func LoadBytecode(data []byte, env *Table, settings *Settings) (*Program, error) {
	m, err := Deserialize(data, settings)
	if err != nil {
		return nil, err
	}
	return Load(m, env, settings)
}

// Env returns the program's environment table.
func (p *Program) Env() *Table { return p.env }

// Module returns the underlying deserialized module.
func (p *Program) Module() *Module { return p.module }

// Close cancels the program. Any in-flight or future Call observes the flag
// at its next instruction boundary and faults with ErrCancelled.
func (p *Program) Close() {
	p.alive.Store(false)
}

// Call runs the entry closure. This is the fault boundary: with error
// handling enabled, faults surface as catchable *RuntimeError values and
// the panic hook fires exactly once per fault, no matter how deep the
// faulting frame was. With error handling off the bare cause is returned
// and no hook runs.
func (p *Program) Call(args ...Value) ([]Value, error) {
	results, err := p.root.invoke(args)
	if err == nil {
		return results, nil
	}
	if !p.settings.ErrorHandling {
		for {
			re, ok := err.(*RuntimeError)
			if !ok || re.cause == nil {
				return nil, err
			}
			err = re.cause
		}
	}

	re, ok := err.(*RuntimeError)
	if !ok {
		re = &RuntimeError{Payload: err.Error(), cause: err}
	}
	if !p.settings.AllowProxyErrors {
		if _, isString := re.Payload.(string); !isString {
			re = &RuntimeError{
				Payload: fmt.Sprintf("(error object is a %s value)", KindOf(re.Payload)),
				Name:    re.Name,
				Line:    re.Line,
				cause:   re.cause,
			}
		}
	}
	if hook := p.settings.Hooks.Panic; hook != nil {
		hook(re)
	}
	return nil, re
}

// callValue dispatches a call to either kind of callable.
func (p *Program) callValue(fn Value, args []Value) ([]Value, error) {
	switch f := fn.(type) {
	case *Closure:
		return f.invoke(args)
	case *Builtin:
		return f.Fn(args...)
	default:
		return nil, fmt.Errorf("attempt to call a %s value", KindOf(fn))
	}
}

// fault attaches prototype and line context to an execution error. Errors
// that already carry context pass through untouched.
func (p *Program) fault(proto *Prototype, pc int32, err error) error {
	if _, ok := err.(*RuntimeError); ok {
		return err
	}
	return &RuntimeError{
		Payload: err.Error(),
		Name:    proto.DebugName,
		Line:    proto.lineAt(pc),
		cause:   err,
	}
}

func (p *Program) faultf(proto *Prototype, pc int32, format string, args ...any) error {
	return p.fault(proto, pc, fmt.Errorf(format, args...))
}

// ---------------------------------------------------------------------------
// Coverage
// ---------------------------------------------------------------------------

// CoverageEntry reports the hit count of one coverage point.
type CoverageEntry struct {
	Proto string
	Line  uint32
	Hits  uint64
}

// CoverageReport collects every coverage point in the module with its
// accumulated hit count.
func (p *Program) CoverageReport() []CoverageEntry {
	var entries []CoverageEntry
	for _, proto := range p.module.Protos {
		for i, inst := range proto.Code {
			if inst == nil || inst.Opcode != OpCOVERAGE {
				continue
			}
			entries = append(entries, CoverageEntry{
				Proto: proto.DebugName,
				Line:  proto.lineAt(int32(i)),
				Hits:  inst.Hits,
			})
		}
	}
	return entries
}
