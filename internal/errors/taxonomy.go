package errors

import stderrors "errors"

// Configuration errors: raised while constructing a value generator.
var (
	ErrOutOfRange    = stderrors.New("bound outside representable range")
	ErrInvalidBounds = stderrors.New("lower bound above upper bound")
	ErrUnsatisfiable = stderrors.New("restriction cannot be satisfied")
)

// Resolution errors: raised while determining the target's feature set.
var (
	ErrModuleNotFound = stderrors.New("module not found on target")
	ErrUnsupported    = stderrors.New("not supported")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
