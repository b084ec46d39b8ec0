package growth

import (
	"errors"
	"fmt"
)

// Domain errors for curve evaluation.
var (
	// ErrDegenerateInput indicates an initial condition equal to the carrying capacity.
	ErrDegenerateInput = errors.New("growth: initial condition equals carrying capacity")

	// ErrNonPositiveCapacity indicates K <= 0 or NaN.
	ErrNonPositiveCapacity = errors.New("growth: carrying capacity must be positive")

	// ErrInvalidSamples indicates an unusable time sampling request.
	ErrInvalidSamples = errors.New("growth: invalid sample range")
)

// DegenerateInputError reports the x0 == K precondition violation. The
// integration constant x0/(K-x0) has no value there.
type DegenerateInputError struct {
	X0 float64
	K  float64
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("growth: x0=%g equals K=%g, integration constant undefined", e.X0, e.K)
}

func (e *DegenerateInputError) Unwrap() error {
	return ErrDegenerateInput
}
