package util

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrTestNotFound          = errors.New("test not found")
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrSessionNotFound       = errors.New("attempt session not found or already closed")
	ErrTooManySessions       = errors.New("too many active attempt sessions")
	ErrNoQuestionsParsed     = errors.New("could not parse any questions")
	ErrAIDisabled            = errors.New("ai question generation is disabled")
	ErrQuestionIndexRange    = errors.New("question index out of range")
	ErrAttemptSubmissionFail = errors.New("attempt could not be submitted")
	ErrArchiveNotFound       = errors.New("import archive not found")
)
