package ingest

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/models"
)

const contactsEndpoint = "https://people.googleapis.com/v1/people/me/connections"

// ContactsIngestor maps the user's saved contacts into people.
type ContactsIngestor struct {
	api    *googleAPI
	logger *zap.Logger
}

// NewContactsIngestor creates the contacts worker.
func NewContactsIngestor(api *googleAPI, logger *zap.Logger) *ContactsIngestor {
	return &ContactsIngestor{api: api, logger: logger.Named("contacts")}
}

var _ Ingestor = (*ContactsIngestor)(nil)

// Source implements Ingestor.
func (c *ContactsIngestor) Source() models.Source {
	return models.SourceContacts
}

type contactsListResponse struct {
	Connections []struct {
		Names []struct {
			DisplayName string `json:"displayName"`
		} `json:"names"`
		EmailAddresses []struct {
			Value string `json:"value"`
		} `json:"emailAddresses"`
		PhoneNumbers []struct {
			Value string `json:"value"`
		} `json:"phoneNumbers"`
	} `json:"connections"`
}

// Ingest implements Ingestor.
func (c *ContactsIngestor) Ingest(ctx context.Context, cred Credential) (models.IngestionResult, error) {
	params := url.Values{}
	params.Set("pageSize", "500")
	params.Set("personFields", "names,emailAddresses,phoneNumbers")

	var list contactsListResponse
	if err := c.api.getJSON(ctx, cred, contactsEndpoint, params, &list); err != nil {
		return models.EmptyResult(models.SourceContacts), err
	}

	result := models.EmptyResult(models.SourceContacts)
	for _, connection := range list.Connections {
		emails := make([]string, 0, len(connection.EmailAddresses))
		for _, e := range connection.EmailAddresses {
			if e.Value != "" {
				emails = append(emails, strings.ToLower(e.Value))
			}
		}
		phones := make([]string, 0, len(connection.PhoneNumbers))
		for _, p := range connection.PhoneNumbers {
			if p.Value != "" {
				phones = append(phones, p.Value)
			}
		}

		name := ""
		if len(connection.Names) > 0 {
			name = connection.Names[0].DisplayName
		}
		if name == "" && len(emails) > 0 {
			name = emails[0]
		}
		if name == "" {
			name = "Unknown"
		}

		result.People = append(result.People, models.Person{
			ID:      uuid.NewString(),
			Name:    name,
			Emails:  emails,
			Phones:  phones,
			Sources: []models.Source{models.SourceContacts},
		})
	}

	c.logger.Debug("ingested", zap.Int("people", len(result.People)))

	return result, nil
}
