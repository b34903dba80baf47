package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Generation session errors.
	ErrSessionNotFound = errors.New("generation session not found")
	ErrSessionExpired  = errors.New("generation session expired")
	ErrConflict        = errors.New("conflicting session write")
)

// PreconditionError reports a generation step requested before the step that
// produces its input has run.
type PreconditionError struct {
	Step    string
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("step %q requires %s to be generated first", e.Step, e.Missing)
}

// UpstreamError wraps a collaborator failure (research scraping, image
// search, content generation) together with the pipeline stage it belongs
// to. The caller decides whether the stage is fatal.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
