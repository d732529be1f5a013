package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/models"
	"github.com/haashim-ali/boggart/pkg/repositories"
	"github.com/haashim-ali/boggart/pkg/retry"
)

const (
	defaultPollInterval    = 10 * time.Second
	defaultMaxPollAttempts = 30 // a five minute ceiling at the default interval
)

// Manager runs the asynchronous video lifecycle:
// generating -> (completed | failed). Status transitions are published
// to the media status store keyed by content id; the content bundle
// itself is never mutated. The background task converts every failure
// into a terminal status write and never raises.
type Manager struct {
	videos          VideoGenerator
	statuses        repositories.MediaStatusStore
	files           repositories.MediaFileStore
	dir             string
	pollInterval    time.Duration
	maxPollAttempts int
	logger          *zap.Logger
}

// ManagerConfig configures the video lifecycle.
type ManagerConfig struct {
	Dir             string        // where downloaded videos land
	PollInterval    time.Duration // 0 means the 10s default
	MaxPollAttempts int           // 0 means the default of 30
}

// NewManager creates a media lifecycle manager.
func NewManager(
	videos VideoGenerator,
	statuses repositories.MediaStatusStore,
	files repositories.MediaFileStore,
	cfg ManagerConfig,
	logger *zap.Logger,
) *Manager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = defaultMaxPollAttempts
	}
	if cfg.Dir == "" {
		cfg.Dir = filepath.Join(os.TempDir(), "boggart-videos")
	}
	return &Manager{
		videos:          videos,
		statuses:        statuses,
		files:           files,
		dir:             cfg.Dir,
		pollInterval:    cfg.PollInterval,
		maxPollAttempts: cfg.MaxPollAttempts,
		logger:          logger.Named("media"),
	}
}

// Start hands a content bundle off for background video generation.
// The status flips to generating synchronously at hand-off; the call
// returns immediately.
func (m *Manager) Start(content models.GeneratedContent) {
	if err := m.statuses.Publish(content.ID, models.MediaGenerating()); err != nil {
		m.logger.Error("failed to publish generating status",
			zap.String("content_id", content.ID),
			zap.Error(err))
		return
	}

	go m.run(context.Background(), content)
}

// Status returns the latest published video status for a content id.
func (m *Manager) Status(contentID string) models.MediaStatus {
	return m.statuses.Get(contentID)
}

// FilePath returns the local file location for a downloaded video.
func (m *Manager) FilePath(contentID string) (string, bool) {
	return m.files.Get(contentID)
}

func (m *Manager) run(ctx context.Context, content models.GeneratedContent) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("video generation panicked",
				zap.String("content_id", content.ID),
				zap.Any("panic", r))
			m.fail(content.ID, fmt.Sprintf("video generation panicked: %v", r))
		}
	}()

	prompt := buildVideoPrompt(content)

	op, err := m.videos.Submit(ctx, prompt, VideoConfig{
		AspectRatio:     "16:9",
		DurationSeconds: 8,
	})
	if err != nil {
		m.fail(content.ID, err.Error())
		return
	}

	m.logger.Info("video job submitted",
		zap.String("content_id", content.ID),
		zap.String("operation", op.Name))

	// Poll at a fixed interval up to the attempt ceiling. A poll error
	// consumes an attempt and is retried after the interval.
	attempts := 0
	for !op.Done && attempts < m.maxPollAttempts {
		select {
		case <-time.After(m.pollInterval):
		case <-ctx.Done():
			m.fail(content.ID, ctx.Err().Error())
			return
		}

		next, err := m.videos.Poll(ctx, op)
		attempts++
		if err != nil {
			m.logger.Debug("video poll failed",
				zap.String("content_id", content.ID),
				zap.Int("attempt", attempts),
				zap.Error(err))
			continue
		}
		op = next
	}

	switch {
	case !op.Done:
		m.fail(content.ID, "video generation timed out")
		return
	case op.Error != "":
		m.fail(content.ID, op.Error)
		return
	case op.ResultRef == "":
		m.fail(content.ID, "no video in response")
		return
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		m.fail(content.ID, fmt.Sprintf("create video dir: %v", err))
		return
	}

	path := filepath.Join(m.dir, content.ID+".mp4")
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		return m.videos.Download(ctx, op.ResultRef, path)
	})
	if err != nil {
		m.fail(content.ID, fmt.Sprintf("download video: %v", err))
		return
	}

	m.files.Put(content.ID, path)
	if err := m.statuses.Publish(content.ID, models.MediaCompleted("/api/media/video/"+content.ID)); err != nil {
		m.logger.Error("failed to publish completed status",
			zap.String("content_id", content.ID),
			zap.Error(err))
		return
	}

	m.logger.Info("video completed",
		zap.String("content_id", content.ID),
		zap.String("path", path))
}

func (m *Manager) fail(contentID, message string) {
	m.logger.Warn("video generation failed",
		zap.String("content_id", contentID),
		zap.String("error", message))
	if err := m.statuses.Publish(contentID, models.MediaFailed(message)); err != nil {
		m.logger.Error("failed to publish failed status",
			zap.String("content_id", contentID),
			zap.Error(err))
	}
}
