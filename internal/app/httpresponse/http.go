package httpresponse

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// APIError is the body served when a mock backend cannot satisfy a request,
// for example when no mock matches or a request constraint is violated.
type APIError struct {
	Error string `json:"error"`
}

func Err(message string) *APIError {
	log.Warn(message)
	return &APIError{
		Error: message,
	}
}

func Errorf(format string, a ...interface{}) *APIError {
	return Err(fmt.Sprintf(format, a...))
}
