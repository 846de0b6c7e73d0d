package endgame

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify an error returned by any package of
// the module.
var (
	// ErrNotPermitted is returned when an account variant does not support an
	// operation at all, e.g. a deposit into a RIF.
	ErrNotPermitted = errors.New("operation not permitted")

	// ErrInvalid is the root of every domain validation failure.
	ErrInvalid = errors.New("invalid operation")

	ErrInsufficientCash   = fmt.Errorf("%w: insufficient cash", ErrInvalid)
	ErrInsufficientShares = fmt.Errorf("%w: insufficient shares", ErrInvalid)
	ErrRoomExceeded       = fmt.Errorf("%w: contribution room exceeded", ErrInvalid)
	ErrWithdrawalLimit    = fmt.Errorf("%w: withdrawal limit breached", ErrInvalid)

	// ErrConfig marks scenario configuration errors, detected before a run starts.
	ErrConfig = errors.New("configuration error")

	ErrCurrencyMismatch = errors.New("currency mismatch")
)
