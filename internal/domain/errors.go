package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("tourapi: upstream unavailable")
	ErrUpstreamRejected    = errors.New("tourapi: upstream rejected request")
	ErrMalformedResponse   = errors.New("tourapi: malformed response")
	ErrDuplicateBookmark   = errors.New("bookmark already exists")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrNothingToRemove     = errors.New("no bookmarks selected")
)

// RejectedError carries the provider's own result code and message.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("tourapi: rejected %s - %s", e.Code, e.Message)
}

func (e *RejectedError) Is(target error) bool { return target == ErrUpstreamRejected }
