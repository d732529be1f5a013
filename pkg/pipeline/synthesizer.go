package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/llm"
	"github.com/haashim-ali/boggart/pkg/models"
)

// Synthesizer turns a digest (or raw graph samples) into a structured
// profile via a single structured-generation request.
type Synthesizer struct {
	client llm.TextClient
	logger *zap.Logger
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(client llm.TextClient, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		client: client,
		logger: logger.Named("synthesizer"),
	}
}

// Synthesize issues the structured-generation request and stamps the
// returned profile with authoritative server-side userId and
// generatedAt values, regardless of what the model echoed back.
func (s *Synthesizer) Synthesize(ctx context.Context, userID string, graph models.EntityGraph, digest string) (*models.Profile, error) {
	prompt := buildSynthesisPrompt(graph, userID, digest)

	profile, err := llm.GenerateJSON[models.Profile](ctx, s.client, prompt)
	if err != nil {
		return nil, fmt.Errorf("synthesize profile: %w", err)
	}

	profile.UserID = userID
	profile.GeneratedAt = time.Now().UTC()

	s.logger.Info("profile synthesized",
		zap.String("user_id", userID),
		zap.Int("relationships", len(profile.Relationships)),
		zap.Int("interests", len(profile.Interests)))

	return &profile, nil
}
