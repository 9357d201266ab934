package calc

import (
	"errors"
	"fmt"
)

// ErrNumeric matches every *NumericError via errors.Is.
var ErrNumeric = errors.New("numeric error")

// Reasons carried by NumericError.
const (
	ReasonDivByZero = "division by zero"
	ReasonNaN       = "not a number"
	ReasonOverflow  = "result is not finite"
)

// NumericError is returned instead of a NaN or infinite result. The live
// preview shows it as an error text; the buffer is left untouched.
type NumericError struct {
	Reason string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric error: %s", e.Reason)
}

func (e *NumericError) Is(target error) bool {
	return target == ErrNumeric
}
