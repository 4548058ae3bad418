package domain

import "errors"

// Input errors.
var (
	ErrInvalidAnswerValue = errors.New("answer value out of range")
	ErrMissingCatalog     = errors.New("question catalog unavailable")
	ErrMissingScores      = errors.New("category scores missing")
	ErrInvalidRespondent  = errors.New("respondent email and company are required")
)

// Collaborator errors. Generation errors never reach the end caller.
var (
	ErrGenerationUnavailable = errors.New("text generation unavailable")
	ErrMalformedResponse     = errors.New("malformed generation response")
	ErrStorageFailure        = errors.New("storage failure")
	ErrNotFound              = errors.New("not found")
)
