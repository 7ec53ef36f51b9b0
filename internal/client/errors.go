package client

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteForm is returned by Submit when the name or code is blank.
	ErrIncompleteForm = errors.New("client: please enter both name and code")
	// ErrFileTooLarge is returned when a selected file exceeds MaxAttachmentBytes.
	ErrFileTooLarge = errors.New("client: file size exceeds limit")
	// ErrNoAttachment is returned when downloading from a note without a file.
	ErrNoAttachment = errors.New("client: note has no attachment")
	// ErrInvalidDataURI is returned when a stored attachment cannot be decoded.
	ErrInvalidDataURI = errors.New("client: invalid data uri")
	// ErrRefreshFailed wraps a cache reload failure that followed a successful mutation.
	ErrRefreshFailed = errors.New("client: note list refresh failed")
)

// APIError is a non-2xx response from the notes service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notes service returned status %d", e.Status)
	}
	return e.Message
}
