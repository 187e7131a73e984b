package luau

import "fmt"

// ---------------------------------------------------------------------------
// Settings and hooks
// ---------------------------------------------------------------------------

// HookContext describes the execution point a hook observes.
type HookContext struct {
	Proto     *Prototype
	PC        int32
	Registers []Value
}

// Hooks are optional observation points. All hooks run on the executing
// goroutine; a nil field disables that hook.
type Hooks struct {
	// Step runs before every dispatched instruction.
	Step func(ctx *HookContext)
	// Interrupt runs at calls, returns, and backward jumps.
	Interrupt func(ctx *HookContext)
	// Break runs when a BREAK instruction is reached. Returning true makes
	// the current frame return early with the given values.
	Break func(ctx *HookContext) ([]Value, bool)
	// Panic runs exactly once per fault surfaced by Program.Call when error
	// handling is enabled.
	Panic func(err error)
}

// NamecallHandler lets the host intercept method-style calls. It receives
// the method name, the receiver, and the call arguments; returning ok=false
// falls back to an ordinary table lookup.
type NamecallHandler func(method string, receiver Value, args []Value) (results []Value, ok bool, err error)

// Settings configures deserialization and execution.
type Settings struct {
	// VectorSize selects 3- or 4-component vector constants. With size 3 the
	// fourth serialized lane is discarded.
	VectorSize int

	// GeneralizedIteration allows generic for-loops directly over tables,
	// bridged through a pull adapter.
	GeneralizedIteration bool

	// UseImportConstants resolves import constants once at load time against
	// StaticEnvironment and caches them on the instruction. Otherwise
	// GETIMPORT walks the live environment on every execution.
	UseImportConstants bool
	// StaticEnvironment is the snapshot import constants resolve against.
	StaticEnvironment *Table

	// ErrorHandling wraps execution faults into catchable *RuntimeError
	// values and fires the panic hook. When off, faults surface as their
	// bare cause and no hook runs.
	ErrorHandling bool
	// AllowProxyErrors keeps non-string fault payloads intact instead of
	// replacing them with a kind description.
	AllowProxyErrors bool

	// Namecall is the native method-call fast path. Its results splice over
	// the CALL instruction that follows a NAMECALL.
	Namecall NamecallHandler
	// NamecallRepeatsHooks also fires step/interrupt hooks for the spliced
	// CALL when the fast path is taken, matching the reference behavior.
	NamecallRepeatsHooks bool

	Hooks Hooks
}

// DefaultSettings returns the stock configuration: 3-wide vectors,
// generalized iteration, wrapped error handling, no import constants.
func DefaultSettings() *Settings {
	return &Settings{
		VectorSize:           3,
		GeneralizedIteration: true,
		ErrorHandling:        true,
		NamecallRepeatsHooks: true,
	}
}

// Validate checks the settings for internal consistency.
func (s *Settings) Validate() error {
	if s.VectorSize != 3 && s.VectorSize != 4 {
		return fmt.Errorf("%w: vector size must be 3 or 4, got %d", ErrInvalidSettings, s.VectorSize)
	}
	if s.UseImportConstants && s.StaticEnvironment == nil {
		return fmt.Errorf("%w: import constants require a static environment", ErrInvalidSettings)
	}
	if !s.UseImportConstants && s.StaticEnvironment != nil {
		return fmt.Errorf("%w: static environment requires import constants", ErrInvalidSettings)
	}
	return nil
}
