// Package content generates personalized ad content bundles from a
// synthesized profile: a persuasion strategy first, then the visual
// concept, copy, and video script fanned out concurrently.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haashim-ali/boggart/pkg/llm"
	"github.com/haashim-ali/boggart/pkg/media"
	"github.com/haashim-ali/boggart/pkg/models"
)

// brandGoals are the fixed demo advertising goals.
var brandGoals = []string{
	"Sell McDonald's Big Mac to this person",
	"Sell Coca-Cola to this person",
	"Sell Nike running shoes to this person",
}

// Generator produces content bundles. Media generators are optional:
// without them the media statuses stay unavailable.
type Generator struct {
	client llm.TextClient
	images media.ImageGenerator
	videos *media.Manager
	logger *zap.Logger
}

// NewGenerator creates a content generator. images and videos may be
// nil when media generation is not configured.
func NewGenerator(client llm.TextClient, images media.ImageGenerator, videos *media.Manager, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		images: images,
		videos: videos,
		logger: logger.Named("content"),
	}
}

// Generate builds one complete content bundle for a goal. The strategy
// is generated first and conditions the three remaining pieces, which
// run concurrently. Any piece failing fails the whole call. When media
// generation is configured the image is produced synchronously and the
// video handed off for background generation before returning.
func (g *Generator) Generate(ctx context.Context, profile models.Profile, goal string) (*models.GeneratedContent, error) {
	strategy, err := llm.GenerateJSON[models.Strategy](ctx, g.client, buildStrategyPrompt(profile, goal))
	if err != nil {
		return nil, fmt.Errorf("generate strategy: %w", err)
	}

	var (
		visual models.VisualConcept
		adCopy models.Copy
		script models.VideoScript
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		v, err := llm.GenerateJSON[models.VisualConcept](egCtx, g.client, buildVisualPrompt(profile, strategy, goal))
		if err != nil {
			return fmt.Errorf("generate visual concept: %w", err)
		}
		visual = v
		return nil
	})
	eg.Go(func() error {
		c, err := llm.GenerateJSON[models.Copy](egCtx, g.client, buildCopyPrompt(profile, strategy, goal))
		if err != nil {
			return fmt.Errorf("generate copy: %w", err)
		}
		adCopy = c
		return nil
	})
	eg.Go(func() error {
		s, err := llm.GenerateJSON[models.VideoScript](egCtx, g.client, buildVideoScriptPrompt(profile, strategy, goal))
		if err != nil {
			return fmt.Errorf("generate video script: %w", err)
		}
		script = s
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	visual.GeneratedImage = models.MediaUnavailable()
	script.GeneratedVideo = models.MediaUnavailable()

	content := &models.GeneratedContent{
		ID:          uuid.NewString(),
		Goal:        goal,
		Strategy:    strategy,
		Visual:      visual,
		Copy:        adCopy,
		VideoScript: script,
		GeneratedAt: time.Now().UTC(),
	}

	if g.images != nil {
		content.Visual.GeneratedImage = g.images.GenerateImage(ctx, visual.ImagePrompt)
	}
	if g.videos != nil {
		g.videos.Start(*content)
	}

	g.logger.Info("content generated",
		zap.String("content_id", content.ID),
		zap.String("goal", goal))

	return content, nil
}

// GenerateBrandAds builds one bundle per fixed brand goal, concurrently.
// Any goal failing fails the whole call.
func (g *Generator) GenerateBrandAds(ctx context.Context, profile models.Profile) ([]*models.GeneratedContent, error) {
	results := make([]*models.GeneratedContent, len(brandGoals))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, goal := range brandGoals {
		eg.Go(func() error {
			content, err := g.Generate(egCtx, profile, goal)
			if err != nil {
				return err
			}
			results[i] = content
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
