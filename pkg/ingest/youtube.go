package ingest

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/models"
)

const (
	youtubeSubsEndpoint   = "https://www.googleapis.com/youtube/v3/subscriptions"
	youtubeVideosEndpoint = "https://www.googleapis.com/youtube/v3/videos"
)

// YouTubeIngestor maps channel subscriptions and liked videos into
// artifacts plus video-interaction moments.
type YouTubeIngestor struct {
	api    *googleAPI
	logger *zap.Logger
}

// NewYouTubeIngestor creates the youtube worker.
func NewYouTubeIngestor(api *googleAPI, logger *zap.Logger) *YouTubeIngestor {
	return &YouTubeIngestor{api: api, logger: logger.Named("youtube")}
}

var _ Ingestor = (*YouTubeIngestor)(nil)

// Source implements Ingestor.
func (y *YouTubeIngestor) Source() models.Source {
	return models.SourceYouTube
}

type youtubeSubsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			ResourceID  struct {
				ChannelID string `json:"channelId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string   `json:"title"`
			Description  string   `json:"description"`
			PublishedAt  string   `json:"publishedAt"`
			ChannelTitle string   `json:"channelTitle"`
			Tags         []string `json:"tags"`
		} `json:"snippet"`
	} `json:"items"`
}

// Ingest implements Ingestor.
func (y *YouTubeIngestor) Ingest(ctx context.Context, cred Credential) (models.IngestionResult, error) {
	result := models.EmptyResult(models.SourceYouTube)

	subsParams := url.Values{}
	subsParams.Set("mine", "true")
	subsParams.Set("part", "snippet")
	subsParams.Set("maxResults", "50")

	var subs youtubeSubsResponse
	if err := y.api.getJSON(ctx, cred, youtubeSubsEndpoint, subsParams, &subs); err != nil {
		return result, err
	}

	for _, sub := range subs.Items {
		snippet := sub.Snippet
		title := snippet.Title
		if title == "" {
			title = "Unknown channel"
		}
		channelURL := ""
		if snippet.ResourceID.ChannelID != "" {
			channelURL = "https://www.youtube.com/channel/" + snippet.ResourceID.ChannelID
		}
		result.Artifacts = append(result.Artifacts, models.Artifact{
			ID:          uuid.NewString(),
			Source:      models.SourceYouTube,
			Type:        models.ArtifactChannel,
			Title:       title,
			Description: snippet.Description,
			URL:         channelURL,
			CreatedAt:   parseRFC3339(snippet.PublishedAt),
			Metadata: map[string]any{
				"channelId": snippet.ResourceID.ChannelID,
			},
		})
	}

	likedParams := url.Values{}
	likedParams.Set("myRating", "like")
	likedParams.Set("part", "snippet")
	likedParams.Set("maxResults", "50")

	var liked youtubeVideosResponse
	if err := y.api.getJSON(ctx, cred, youtubeVideosEndpoint, likedParams, &liked); err != nil {
		return result, err
	}

	for _, video := range liked.Items {
		snippet := video.Snippet
		title := snippet.Title
		if title == "" {
			title = "Unknown video"
		}
		videoURL := ""
		if video.ID != "" {
			videoURL = "https://www.youtube.com/watch?v=" + video.ID
		}
		result.Artifacts = append(result.Artifacts, models.Artifact{
			ID:          uuid.NewString(),
			Source:      models.SourceYouTube,
			Type:        models.ArtifactVideo,
			Title:       title,
			Description: snippet.Description,
			URL:         videoURL,
			CreatedAt:   parseRFC3339(snippet.PublishedAt),
			Metadata: map[string]any{
				"channelTitle": snippet.ChannelTitle,
				"tags":         snippet.Tags,
			},
		})

		timestamp := time.Now().UTC()
		if t := parseRFC3339(snippet.PublishedAt); t != nil {
			timestamp = *t
		}
		result.Moments = append(result.Moments, models.Moment{
			ID:        uuid.NewString(),
			Source:    models.SourceYouTube,
			Timestamp: timestamp,
			Type:      models.MomentVideoInteraction,
			Summary:   "Liked: " + title,
			PeopleIDs: []string{},
			Metadata: map[string]any{
				"videoId":      video.ID,
				"channelTitle": snippet.ChannelTitle,
			},
		})
	}

	y.logger.Debug("ingested",
		zap.Int("artifacts", len(result.Artifacts)),
		zap.Int("moments", len(result.Moments)))

	return result, nil
}

func parseRFC3339(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
