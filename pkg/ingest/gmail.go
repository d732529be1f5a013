package ingest

import (
	"context"
	"encoding/base64"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/models"
)

const gmailEndpoint = "https://gmail.googleapis.com/gmail/v1/users/me/messages"

// GmailIngestor maps recent email into people and moments.
type GmailIngestor struct {
	api    *googleAPI
	logger *zap.Logger
}

// NewGmailIngestor creates the gmail worker.
func NewGmailIngestor(api *googleAPI, logger *zap.Logger) *GmailIngestor {
	return &GmailIngestor{api: api, logger: logger.Named("gmail")}
}

var _ Ingestor = (*GmailIngestor)(nil)

// Source implements Ingestor.
func (g *GmailIngestor) Source() models.Source {
	return models.SourceGmail
}

type gmailListResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	NextPageToken string `json:"nextPageToken"`
}

type gmailPart struct {
	MimeType string `json:"mimeType"`
	Body     struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []gmailPart `json:"parts"`
}

type gmailMessage struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		gmailPart
	} `json:"payload"`
}

// Ingest implements Ingestor.
func (g *GmailIngestor) Ingest(ctx context.Context, cred Credential) (models.IngestionResult, error) {
	params := url.Values{}
	params.Set("q", "newer_than:180d")
	params.Set("maxResults", strconv.Itoa(g.api.maxResults))

	var ids []string
	for {
		var list gmailListResponse
		if err := g.api.getJSON(ctx, cred, gmailEndpoint, params, &list); err != nil {
			return models.EmptyResult(models.SourceGmail), err
		}
		for _, m := range list.Messages {
			ids = append(ids, m.ID)
		}
		if list.NextPageToken == "" || len(ids) >= g.api.maxResults {
			break
		}
		params.Set("pageToken", list.NextPageToken)
	}
	if len(ids) > g.api.maxResults {
		ids = ids[:g.api.maxResults]
	}

	g.logger.Debug("listed messages", zap.Int("count", len(ids)))

	people := make(map[string]*models.Person)
	var peopleOrder []string
	var moments []models.Moment

	for _, id := range ids {
		var msg gmailMessage
		if err := g.api.getJSON(ctx, cred, gmailEndpoint+"/"+id, url.Values{"format": []string{"full"}}, &msg); err != nil {
			// Skip individual message fetch failures.
			continue
		}

		header := func(name string) string {
			for _, h := range msg.Payload.Headers {
				if strings.EqualFold(h.Name, name) {
					return h.Value
				}
			}
			return ""
		}

		from := header("From")
		to := header("To")
		subject := header("Subject")
		date := header("Date")

		timestamp := time.Now().UTC()
		var lastInteraction *time.Time
		if parsed, err := mail.ParseDate(date); err == nil {
			timestamp = parsed.UTC()
			lastInteraction = &timestamp
		}

		var peopleIDs []string
		for _, contact := range []string{from, to} {
			if contact == "" {
				continue
			}
			addr, err := mail.ParseAddress(contact)
			if err != nil {
				continue
			}
			email := strings.ToLower(addr.Address)
			person, ok := people[email]
			if !ok {
				name := addr.Name
				if name == "" {
					name = email
				}
				person = &models.Person{
					ID:      uuid.NewString(),
					Name:    name,
					Emails:  []string{email},
					Phones:  []string{},
					Sources: []models.Source{models.SourceGmail},
				}
				people[email] = person
				peopleOrder = append(peopleOrder, email)
			}
			person.InteractionCount++
			person.LastInteraction = lastInteraction
			peopleIDs = append(peopleIDs, person.ID)
		}

		momentType := models.MomentEmailSent
		if from != "" && !strings.Contains(from, "me") {
			momentType = models.MomentEmailReceived
		}

		summary := subject
		if summary == "" {
			summary = msg.Snippet
		}

		moments = append(moments, models.Moment{
			ID:        uuid.NewString(),
			Source:    models.SourceGmail,
			Timestamp: timestamp,
			Type:      momentType,
			Summary:   summary,
			PeopleIDs: peopleIDs,
			Metadata: map[string]any{
				"subject": subject,
				"snippet": msg.Snippet,
				"body":    truncate(extractPlainText(msg.Payload.gmailPart), 800),
			},
		})
	}

	result := models.EmptyResult(models.SourceGmail)
	for _, email := range peopleOrder {
		result.People = append(result.People, *people[email])
	}
	result.Moments = moments

	g.logger.Debug("ingested",
		zap.Int("moments", len(result.Moments)),
		zap.Int("people", len(result.People)))

	return result, nil
}

// extractPlainText walks the MIME tree for the first text/plain part.
func extractPlainText(part gmailPart) string {
	if part.MimeType == "text/plain" && part.Body.Data != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err == nil {
			return string(decoded)
		}
	}
	for _, child := range part.Parts {
		if text := extractPlainText(child); text != "" {
			return text
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
