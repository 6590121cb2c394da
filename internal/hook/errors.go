package hook

import "errors"

var (
	// ErrSlotDiverted means a vtable slot no longer holds the address the
	// resolver extracted, so another redirect got there first. Installing
	// over it would risk a hook chain calling back into itself.
	ErrSlotDiverted = errors.New("vtable slot already diverted")

	// ErrNotResolved means an interceptor was built from zeroed addresses.
	ErrNotResolved = errors.New("present address not resolved")
)
