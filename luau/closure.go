package luau

// ---------------------------------------------------------------------------
// Closures
// ---------------------------------------------------------------------------

// Closure binds a prototype to its captured upvalue cells within a loaded
// program.
type Closure struct {
	proto    *Prototype
	upvalues []*Upvalue
	program  *Program
}

// Proto returns the closure's prototype.
func (c *Closure) Proto() *Prototype { return c.proto }

// Call invokes the closure from the host, for closures a program returned
// as values. Faults carry prototype context but do not pass through the
// program's panic hook; that stays a Program.Call affair.
func (c *Closure) Call(args ...Value) ([]Value, error) {
	return c.invoke(args)
}

// invoke allocates a frame, binds parameters and varargs, and runs the body.
func (c *Closure) invoke(args []Value) ([]Value, error) {
	f := newFrame(c.proto.MaxStackSize)

	n := int(c.proto.NumParams)
	if n > len(args) {
		n = len(args)
	}
	copy(f.registers[:n], args[:n])
	if c.proto.IsVararg && len(args) > int(c.proto.NumParams) {
		f.varargs = args[c.proto.NumParams:]
	}
	f.top = int32(c.proto.NumParams) - 1

	defer f.release()
	return c.program.execute(c, f)
}

// Capture kinds consumed by NEWCLOSURE and DUPCLOSURE.
const (
	captureValue   = 0 // copy the register's value now
	captureRef     = 1 // alias the register until closed
	captureUpvalue = 2 // share the parent closure's cell
)
