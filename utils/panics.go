package utils

import "fmt"

// RecoverWithError converts a panic in the deferring function into an error.
func RecoverWithError(err *error) {
	if rv := recover(); rv != nil {
		*err = fmt.Errorf("recovered panic: %v", rv)
	}
}
