package luau

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Arithmetic and comparison
// ---------------------------------------------------------------------------

// arithError builds the Luau-style fault message for a bad binary operand
// pair.
func arithError(op string, a, b Value) error {
	return fmt.Errorf("attempt to perform arithmetic (%s) on %s and %s", op, KindOf(a), KindOf(b))
}

func arithAdd(a, b Value) (Value, error) {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			return x + y, nil
		}
	}
	if x, ok := a.(Vector); ok {
		if y, ok := b.(Vector); ok {
			return Vector{x[0] + y[0], x[1] + y[1], x[2] + y[2], x[3] + y[3]}, nil
		}
	}
	return nil, arithError("add", a, b)
}

func arithSub(a, b Value) (Value, error) {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			return x - y, nil
		}
	}
	if x, ok := a.(Vector); ok {
		if y, ok := b.(Vector); ok {
			return Vector{x[0] - y[0], x[1] - y[1], x[2] - y[2], x[3] - y[3]}, nil
		}
	}
	return nil, arithError("sub", a, b)
}

func arithMul(a, b Value) (Value, error) {
	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x * y, nil
		case Vector:
			s := float32(x)
			return Vector{s * y[0], s * y[1], s * y[2], s * y[3]}, nil
		}
	case Vector:
		switch y := b.(type) {
		case float64:
			s := float32(y)
			return Vector{x[0] * s, x[1] * s, x[2] * s, x[3] * s}, nil
		case Vector:
			return Vector{x[0] * y[0], x[1] * y[1], x[2] * y[2], x[3] * y[3]}, nil
		}
	}
	return nil, arithError("mul", a, b)
}

func arithDiv(a, b Value) (Value, error) {
	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x / y, nil
		case Vector:
			s := float32(x)
			return Vector{s / y[0], s / y[1], s / y[2], s / y[3]}, nil
		}
	case Vector:
		switch y := b.(type) {
		case float64:
			s := float32(y)
			return Vector{x[0] / s, x[1] / s, x[2] / s, x[3] / s}, nil
		case Vector:
			return Vector{x[0] / y[0], x[1] / y[1], x[2] / y[2], x[3] / y[3]}, nil
		}
	}
	return nil, arithError("div", a, b)
}

func arithMod(a, b Value) (Value, error) {
	x, okA := a.(float64)
	y, okB := b.(float64)
	if !okA || !okB {
		return nil, arithError("mod", a, b)
	}
	return x - math.Floor(x/y)*y, nil
}

func arithPow(a, b Value) (Value, error) {
	x, okA := a.(float64)
	y, okB := b.(float64)
	if !okA || !okB {
		return nil, arithError("pow", a, b)
	}
	return math.Pow(x, y), nil
}

func arithIdiv(a, b Value) (Value, error) {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return math.Floor(x / y), nil
		}
	case Vector:
		switch y := b.(type) {
		case float64:
			s := float32(y)
			return Vector{
				floor32(x[0] / s), floor32(x[1] / s),
				floor32(x[2] / s), floor32(x[3] / s),
			}, nil
		case Vector:
			return Vector{
				floor32(x[0] / y[0]), floor32(x[1] / y[1]),
				floor32(x[2] / y[2]), floor32(x[3] / y[3]),
			}, nil
		}
	}
	return nil, arithError("idiv", a, b)
}

func floor32(f float32) float32 {
	return float32(math.Floor(float64(f)))
}

func arithUnm(v Value) (Value, error) {
	switch x := v.(type) {
	case float64:
		return -x, nil
	case Vector:
		return Vector{-x[0], -x[1], -x[2], -x[3]}, nil
	}
	return nil, fmt.Errorf("attempt to perform arithmetic (unm) on %s", KindOf(v))
}

// compareLess and compareLessEqual order numbers and strings; anything else
// faults the way Luau comparison does.
func compareLess(a, b Value) (bool, error) {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			return x < y, nil
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return x < y, nil
		}
	}
	return false, fmt.Errorf("attempt to compare %s < %s", KindOf(a), KindOf(b))
}

func compareLessEqual(a, b Value) (bool, error) {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			return x <= y, nil
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return x <= y, nil
		}
	}
	return false, fmt.Errorf("attempt to compare %s <= %s", KindOf(a), KindOf(b))
}

// concatValue renders a value for CONCAT; only strings and numbers
// participate.
func concatValue(v Value) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return numberToString(x), true
	}
	return "", false
}
