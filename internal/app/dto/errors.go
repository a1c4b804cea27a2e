package dto

import "errors"

// Request errors
var (
	ErrMissingProjectID = errors.New("project ID is required")
	ErrEmptyBody        = errors.New("request body is empty")
	ErrEmptyBatch       = errors.New("no project files given")
)
