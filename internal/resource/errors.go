package resource

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error kinds returned by resource operations.
var (
	ErrInvalidIdentifier = errors.New("Invalid ID")
	ErrNotFound          = errors.New("Data not found")
	ErrUploadFailure     = errors.New("upload failure")
	ErrInternal          = errors.New("internal failure")
	ErrInvalidBody       = errors.New("invalid request body")
)

// Error is the body of a failed operation. Message is what the client sees.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Key returns the stable machine-readable key for the error kind.
func (e *Error) Key() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidIdentifier):
		return "invalid_id"
	case errors.Is(e.Kind, ErrNotFound):
		return "not_found"
	case errors.Is(e.Kind, ErrUploadFailure):
		return "upload_failure"
	case errors.Is(e.Kind, ErrInvalidBody):
		return "invalid_body"
	default:
		return "internal_failure"
	}
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"key":   e.Key(),
		"error": e.Message,
	})
}

// MapHTTPStatus maps resource errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidIdentifier) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUploadFailure) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrInvalidBody) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func failure(kind error, message string) Response {
	err := &Error{Kind: kind, Message: message}
	return Response{Status: MapHTTPStatus(err), Body: err}
}

func invalidID() Response {
	return failure(ErrInvalidIdentifier, ErrInvalidIdentifier.Error())
}

func notFound() Response {
	return failure(ErrNotFound, ErrNotFound.Error())
}

func uploadFailure(err error) Response {
	return failure(ErrUploadFailure, err.Error())
}

func internal(err error) Response {
	return failure(ErrInternal, err.Error())
}

func invalidBody(err error) Response {
	return failure(ErrInvalidBody, err.Error())
}
