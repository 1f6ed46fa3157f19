package api

import "fmt"

// Messages used when the service gives nothing better
const (
	MsgGeneric = "Ocurrió un error"
	MsgUnknown = "Ocurrió un error desconocido"
)

// Error is the single failure shape of the client. Status is 0 when the
// request never got a response.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}
