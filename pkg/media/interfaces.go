// Package media manages generated image and video assets: the
// synchronous image call and the asynchronous, polled, time-bounded
// video lifecycle.
package media

import (
	"context"

	"github.com/haashim-ali/boggart/pkg/models"
)

// ImageGenerator produces an image for a prompt. The call is
// synchronous and never returns an error: failures are folded into a
// terminal failed status.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) models.MediaStatus
}

// Operation is the opaque handle for an in-flight video generation job.
type Operation struct {
	Name      string // server-side operation name
	Done      bool
	Error     string // set when the operation finished with an error
	ResultRef string // reference to the generated asset, set on success
}

// VideoConfig carries the fixed generation parameters.
type VideoConfig struct {
	AspectRatio     string
	DurationSeconds int
}

// VideoGenerator is the long-running video generation service.
type VideoGenerator interface {
	// Submit starts a generation job and returns its operation handle.
	Submit(ctx context.Context, prompt string, cfg VideoConfig) (Operation, error)

	// Poll refreshes the operation handle. Idempotent.
	Poll(ctx context.Context, op Operation) (Operation, error)

	// Download materializes the generated asset at destPath.
	Download(ctx context.Context, resultRef, destPath string) error
}
