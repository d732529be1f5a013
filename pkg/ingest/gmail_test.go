package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/config"
	"github.com/haashim-ali/boggart/pkg/models"
)

// cannedTransport serves fixed JSON bodies keyed by request path, so
// workers can be exercised against their real endpoint URLs.
type cannedTransport struct {
	responses map[string]string
	requests  []*http.Request
}

func (c *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.requests = append(c.requests, req)

	body, ok := c.responses[req.URL.Path]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"error":"not found"}`)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestAPI(transport *cannedTransport) *googleAPI {
	cfg := &config.GoogleConfig{RequestTimeout: 5 * time.Second, MaxResults: 200}
	api := newGoogleAPI(cfg, zap.NewNop())
	api.http = &http.Client{Transport: transport}
	return api
}

func gmailMessageJSON(id, from, to, subject, date, bodyText string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(bodyText))
	return fmt.Sprintf(`{
		"id": %q,
		"snippet": "snippet of %s",
		"payload": {
			"headers": [
				{"name": "From", "value": %q},
				{"name": "To", "value": %q},
				{"name": "Subject", "value": %q},
				{"name": "Date", "value": %q}
			],
			"mimeType": "multipart/alternative",
			"parts": [
				{"mimeType": "text/plain", "body": {"data": %q}}
			]
		}
	}`, id, id, from, to, subject, date, encoded)
}

func TestGmailIngestor_MapsMessagesToEntities(t *testing.T) {
	transport := &cannedTransport{responses: map[string]string{
		"/gmail/v1/users/me/messages":    `{"messages":[{"id":"m1"},{"id":"m2"}]}`,
		"/gmail/v1/users/me/messages/m1": gmailMessageJSON("m1", "Alice Brooks <alice@example.com>", "me@example.com", "Lunch?", "Mon, 02 Mar 2026 15:30:00 +0000", "Want to grab lunch on Thursday?"),
		"/gmail/v1/users/me/messages/m2": gmailMessageJSON("m2", "Alice Brooks <Alice@Example.com>", "me@example.com", "Re: Lunch?", "Tue, 03 Mar 2026 09:00:00 +0000", "Thursday works."),
	}}
	ingestor := NewGmailIngestor(newTestAPI(transport), zap.NewNop())

	result, err := ingestor.Ingest(context.Background(), Credential{AccessToken: "tok"})
	require.NoError(t, err)

	assert.Equal(t, models.SourceGmail, result.Source)
	require.Len(t, result.Moments, 2)
	assert.Equal(t, "Lunch?", result.Moments[0].Summary)
	assert.Equal(t, models.MomentEmailReceived, result.Moments[0].Type)
	assert.Equal(t, "Want to grab lunch on Thursday?", result.Moments[0].Metadata["body"])

	// Both messages resolve to the same people keyed by lower-cased email.
	emails := make(map[string]models.Person)
	for _, p := range result.People {
		require.Len(t, p.Emails, 1)
		emails[p.Emails[0]] = p
	}
	require.Contains(t, emails, "alice@example.com")
	alice := emails["alice@example.com"]
	assert.Equal(t, "Alice Brooks", alice.Name)
	assert.Equal(t, 2, alice.InteractionCount)
	require.NotNil(t, alice.LastInteraction)
	assert.Equal(t, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), alice.LastInteraction.UTC())
}

func TestGmailIngestor_SendsBearerToken(t *testing.T) {
	transport := &cannedTransport{responses: map[string]string{
		"/gmail/v1/users/me/messages": `{"messages":[]}`,
	}}
	ingestor := NewGmailIngestor(newTestAPI(transport), zap.NewNop())

	_, err := ingestor.Ingest(context.Background(), Credential{AccessToken: "secret-token"})
	require.NoError(t, err)

	require.NotEmpty(t, transport.requests)
	assert.Equal(t, "Bearer secret-token", transport.requests[0].Header.Get("Authorization"))
	assert.Contains(t, transport.requests[0].URL.RawQuery, "newer_than%3A180d")
}

func TestGmailIngestor_SkipsFailedMessageFetches(t *testing.T) {
	transport := &cannedTransport{responses: map[string]string{
		"/gmail/v1/users/me/messages":    `{"messages":[{"id":"gone"},{"id":"m1"}]}`,
		"/gmail/v1/users/me/messages/m1": gmailMessageJSON("m1", "bob@example.com", "me@example.com", "Hi", "Mon, 02 Mar 2026 15:30:00 +0000", "hello"),
	}}
	ingestor := NewGmailIngestor(newTestAPI(transport), zap.NewNop())

	result, err := ingestor.Ingest(context.Background(), Credential{AccessToken: "tok"})
	require.NoError(t, err)

	assert.Len(t, result.Moments, 1, "a single unfetchable message must not fail the worker")
}

func TestGmailIngestor_ListFailureReturnsError(t *testing.T) {
	transport := &cannedTransport{responses: map[string]string{}}
	ingestor := NewGmailIngestor(newTestAPI(transport), zap.NewNop())

	result, err := ingestor.Ingest(context.Background(), Credential{AccessToken: "tok"})
	require.Error(t, err)
	assert.Equal(t, 0, result.ItemCount())
}

func TestExtractPlainText_WalksNestedParts(t *testing.T) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte("deep text"))
	part := gmailPart{
		MimeType: "multipart/mixed",
		Parts: []gmailPart{
			{MimeType: "text/html"},
			{
				MimeType: "multipart/alternative",
				Parts: []gmailPart{
					{MimeType: "text/plain", Body: struct {
						Data string `json:"data"`
					}{Data: encoded}},
				},
			},
		},
	}

	assert.Equal(t, "deep text", extractPlainText(part))
}

func TestExtractPlainText_EmptyTree(t *testing.T) {
	assert.Empty(t, extractPlainText(gmailPart{MimeType: "text/html"}))
}
