package engine

import "errors"

// Domain errors returned by the engine. The service layer maps these onto
// response error codes; nothing here is retried internally.
var (
	ErrInvalidOption          = errors.New("answer references an option that does not belong to the question")
	ErrInvalidAnswerShape     = errors.New("answer value does not match the question type")
	ErrUnknownQuestionType    = errors.New("unknown question type")
	ErrInvalidStateTransition = errors.New("operation not allowed in the current assessment status")
	ErrInvalidScore           = errors.New("final score is required by the weighting mode")
	ErrQuestionMismatch       = errors.New("answer references a question outside this assessment")
)
