// Package luau implements a deserializer and interpreter for compiled Luau
// bytecode modules.
//
// This package contains:
//   - Binary module deserializer with strict bounds checking
//   - 83-opcode instruction decoder with constant-reference resolution
//   - Register-based execution engine with open call/return arity
//   - Two-state (open/closed) upvalue cells
//   - Generalized iteration over tables via a pull adapter
//   - Step/interrupt/break/panic hooks and per-instruction coverage
package luau
