package domain

import "errors"

var (
	ErrEmptyText       = errors.New("empty text")
	ErrTextTooLong     = errors.New("text too long")
	ErrRateLimited     = errors.New("llm request limit reached")
	ErrInvalidResponse = errors.New("llm returned malformed data")
	ErrNoSession       = errors.New("no active session")
	ErrSessionExpired  = errors.New("session expired")
	ErrFileNotFound    = errors.New("file not found")
)
