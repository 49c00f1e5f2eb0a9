package physics

import "errors"

var (
	// ErrInvalidParams indicates a Params value that cannot describe a table.
	ErrInvalidParams = errors.New("physics: invalid table parameters")

	// ErrNonFinite indicates a disc position or velocity became NaN or Inf.
	ErrNonFinite = errors.New("physics: non-finite disc state")
)
