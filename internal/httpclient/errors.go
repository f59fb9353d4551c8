package httpclient

import (
	"fmt"
	"strings"
)

// MissingParamsError lists required parameters that have no value.
type MissingParamsError struct {
	Names []string
}

func (e *MissingParamsError) Error() string {
	return "missing required parameter(s): " + strings.Join(e.Names, ", ")
}

// InvalidBodyError reports request body text that is not valid JSON.
type InvalidBodyError struct {
	Err error
}

func (e *InvalidBodyError) Error() string {
	return fmt.Sprintf("invalid json body: %v", e.Err)
}

func (e *InvalidBodyError) Unwrap() error { return e.Err }

// DispatchError is a transport failure: no HTTP response was received.
type DispatchError struct {
	Method string
	URL    string
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
