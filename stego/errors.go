package stego

import "fmt"

// CapacityError reports a payload that needs more pixels than the carrier has.
type CapacityError struct {
	Need int
	Have int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("payload needs %d pixels, carrier has %d", e.Need, e.Have)
}
