package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/config"
)

// googleAPI is the shared REST client behind every Google-backed worker.
// Workers attach the per-run credential on each call.
type googleAPI struct {
	http       *http.Client
	maxResults int
	logger     *zap.Logger
}

func newGoogleAPI(cfg *config.GoogleConfig, logger *zap.Logger) *googleAPI {
	return &googleAPI{
		http:       &http.Client{Timeout: cfg.RequestTimeout},
		maxResults: cfg.MaxResults,
		logger:     logger.Named("google"),
	}
}

// getJSON performs an authenticated GET against a Google API endpoint
// and decodes the JSON response into out.
func (g *googleAPI) getJSON(ctx context.Context, cred Credential, endpoint string, params url.Values, out any) error {
	u := endpoint
	if len(params) > 0 {
		u = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("call %s: status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// NewGoogleRegistry wires the five Google-backed workers in their fixed
// launch order.
func NewGoogleRegistry(cfg *config.GoogleConfig, logger *zap.Logger) *Registry {
	api := newGoogleAPI(cfg, logger)
	return NewRegistry(
		NewGmailIngestor(api, logger),
		NewCalendarIngestor(api, logger),
		NewContactsIngestor(api, logger),
		NewYouTubeIngestor(api, logger),
		NewDriveIngestor(api, logger),
	)
}
