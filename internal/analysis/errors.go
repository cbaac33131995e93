package analysis

import "fmt"

// DefaultErrorMessage is shown when a failed response carries no message.
const DefaultErrorMessage = "Something went wrong."

// TransportError indicates the request never produced a usable response:
// the connection failed, the body could not be read, or a success body was
// not JSON.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError indicates the service answered with a non-success status.
type ApplicationError struct {
	Status int

	// Message is the service's own error text, or DefaultErrorMessage.
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}
