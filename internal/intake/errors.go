package intake

import "errors"

// Intake errors. Messages are returned to clients in upload failure responses.
var (
	// ErrUnexpectedField indicates a file arrived for a field the resource does not accept,
	// or a second file arrived for the same field.
	ErrUnexpectedField = errors.New("Unexpected field")

	// ErrTooLarge indicates the upload exceeded the configured ceiling.
	ErrTooLarge = errors.New("File too large")

	// ErrMalformed indicates the multipart body could not be parsed.
	ErrMalformed = errors.New("Malformed multipart body")

	// ErrInvalidFilename indicates a file part whose name reduces to nothing usable.
	ErrInvalidFilename = errors.New("Invalid file name")
)
