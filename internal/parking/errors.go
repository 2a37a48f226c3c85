package parking

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrCapacityExceeded = errors.New("parking lot is full")
	ErrInvalidTicket    = errors.New("invalid ticket")
	ErrAlreadySettled   = errors.New("ticket already settled")
	ErrVehicleNotFound  = errors.New("vehicle not found")

	// ErrConflict and ErrNotFound come from SpotPool and TicketStore. Seen outside
	// the engine they mean its locking is broken.
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// IsExpected reports whether err is an outcome callers are expected to hit in
// normal operation, as opposed to a fault.
func IsExpected(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrInvalidTicket) ||
		errors.Is(err, ErrAlreadySettled) ||
		errors.Is(err, ErrVehicleNotFound)
}
