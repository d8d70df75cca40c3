package domain

import "errors"

// ErrEvaluationNotFound is returned when an evaluation ID cannot be found in the history.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// ErrEmptyID is returned by stores when asked for an evaluation without an ID.
var ErrEmptyID = errors.New("evaluation id cannot be empty")
