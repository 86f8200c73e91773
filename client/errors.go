package client

import (
	"errors"
	"net/http"

	"bakeryapi/apperr"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Kind    apperr.Kind
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// UserMessage is the toast text for err: the server's message when it sent
// a usable one, otherwise a generic line for the error kind.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return apperr.UserMessage(&apperr.Error{Kind: ae.Kind, Message: ae.Message})
	}
	return apperr.UserMessage(err)
}

// IsKind reports whether err is an API error of the given kind.
func IsKind(err error, kind apperr.Kind) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == kind
}
