package evse

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrCommandMismatch is returned when the charger echoes a value different from the requested one.
var ErrCommandMismatch = errors.New("charger did not accept the requested value")

// TransportError is returned when the charger could not be reached or answered with an unexpected status.
type TransportError struct {
	Err    error
	URL    string
	Status int
}

func (e TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("no valid response from EVSE-WiFi at %s: %s, status code: %d", e.URL, e.Err, e.Status)
	}

	return fmt.Sprintf("no response from EVSE-WiFi at %s: %s", e.URL, e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// FormatError is returned when a response body is not valid JSON or lacks the expected keys.
type FormatError struct {
	Err error
}

func (e FormatError) Error() string {
	return fmt.Sprintf("malformed EVSE-WiFi response: %s", e.Err)
}

func (e FormatError) Unwrap() error {
	return e.Err
}
