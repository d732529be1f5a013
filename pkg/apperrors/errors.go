package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoProfile       = errors.New("no profile for user; run the pipeline first")
	ErrPipelineRunning = errors.New("pipeline already running for user")
	ErrVideoNotReady   = errors.New("video file not available")
)
