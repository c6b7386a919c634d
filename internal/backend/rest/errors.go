package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// GenericMessage is shown when the backend gave no usable message.
const GenericMessage = "Something went wrong"

// TransportError means no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return "network error: could not reach server"
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError is a non-2xx response.
type BackendError struct {
	StatusCode int
	Msg        string
	Err        *googleapi.Error
}

func (e *BackendError) Error() string { return e.Msg }

func (e *BackendError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *BackendError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// UnknownError covers everything else: unencodable requests, undecodable responses.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string { return GenericMessage }

func (e *UnknownError) Unwrap() error { return e.Err }

// errorBody is the backend's structured failure shape.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func newBackendError(err error) *BackendError {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &BackendError{Msg: GenericMessage}
	}

	msg := gerr.Message
	var body errorBody
	if json.Unmarshal([]byte(gerr.Body), &body) == nil {
		if m := strings.TrimSpace(body.Message); m != "" {
			msg = m
		} else if msg == "" {
			var s string
			if json.Unmarshal(body.Error, &s) == nil {
				msg = strings.TrimSpace(s)
			}
		}
	}
	if msg == "" {
		msg = GenericMessage
	}
	return &BackendError{StatusCode: gerr.Code, Msg: msg, Err: gerr}
}

// ErrorMessage returns the single human-readable string for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		terr *TransportError
		berr *BackendError
		uerr *UnknownError
	)
	switch {
	case errors.As(err, &berr):
		return berr.Error()
	case errors.As(err, &terr):
		return terr.Error()
	case errors.As(err, &uerr):
		return uerr.Error()
	}
	return err.Error()
}

// IsUnauthorized reports whether err is a 401/403 from the backend.
func IsUnauthorized(err error) bool {
	var berr *BackendError
	return errors.As(err, &berr) && berr.Unauthorized()
}
