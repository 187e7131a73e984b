package luau

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

var (
	// ErrCorruptBytecode indicates the input is not a well-formed bytecode
	// module: truncated reads, invalid references, trailing bytes, or a
	// compile-failure marker (version byte 0).
	ErrCorruptBytecode = errors.New("corrupt bytecode")

	// ErrUnsupportedOpcode indicates the module references an opcode this
	// interpreter does not know.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrInvalidSettings indicates an inconsistent Settings value.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrCancelled is the fault payload cause for a program killed via Close.
	ErrCancelled = errors.New("program execution cancelled")
)

// RuntimeError is a fault raised during execution. Payload carries the Luau
// error value (usually a string message); Name and Line locate the faulting
// prototype when line information was present in the module.
type RuntimeError struct {
	Payload Value
	Name    string
	Line    uint32
	cause   error
}

func (e *RuntimeError) Error() string {
	msg := ""
	if s, ok := e.Payload.(string); ok {
		msg = s
	} else {
		msg = fmt.Sprintf("(%s payload)", KindOf(e.Payload))
	}
	if e.Name == "" {
		if e.Line == 0 {
			return msg
		}
		return fmt.Sprintf(":%d: %s", e.Line, msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, msg)
}

func (e *RuntimeError) Unwrap() error { return e.cause }
