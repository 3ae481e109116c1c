package autowire

import "fmt"

// UnsupportedScanInputError is returned when the scanner is handed a root
// outside {string, Symbol, omitted, nil}. The permissive scan mode
// suppresses it and yields an empty result instead.
type UnsupportedScanInputError struct {
	Got any
}

// Error implements the error interface.
func (e *UnsupportedScanInputError) Error() string {
	return fmt.Sprintf("autowire: unsupported scan root %T(%v); want a string, a Symbol, or no root at all",
		e.Got, e.Got)
}
