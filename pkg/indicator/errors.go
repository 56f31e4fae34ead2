package indicator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches every *InputError
	ErrInvalidInput = errors.New("invalid price series")
	// ErrInvalidWindow is returned for window parameters below their minimum
	ErrInvalidWindow = errors.New("invalid window")
	// ErrLengthMismatch is returned when aligned inputs differ in length
	ErrLengthMismatch = errors.New("input series lengths differ")
)

// InputError reports a malformed bar sequence. Index is the offending bar,
// or -1 when the problem concerns the sequence as a whole.
type InputError struct {
	Index int
	Err   error
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", ErrInvalidInput, e.Err)
	}
	return fmt.Sprintf("%s: bar %d: %v", ErrInvalidInput, e.Index, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidInput) match any InputError
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func windowError(name string, window, min int) error {
	return fmt.Errorf("%w: %s window must be at least %d, got %d", ErrInvalidWindow, name, min, window)
}

func checkWindow(name string, window, min int) error {
	if window < min {
		return windowError(name, window, min)
	}
	return nil
}

func checkAligned(lengths ...int) error {
	for _, n := range lengths[1:] {
		if n != lengths[0] {
			return fmt.Errorf("%w: %v", ErrLengthMismatch, lengths)
		}
	}
	return nil
}
