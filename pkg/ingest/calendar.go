package ingest

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/models"
)

const calendarEndpoint = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

// CalendarIngestor maps the last six months of calendar events into
// meeting moments and attendee people.
type CalendarIngestor struct {
	api    *googleAPI
	logger *zap.Logger
}

// NewCalendarIngestor creates the calendar worker.
func NewCalendarIngestor(api *googleAPI, logger *zap.Logger) *CalendarIngestor {
	return &CalendarIngestor{api: api, logger: logger.Named("calendar")}
}

var _ Ingestor = (*CalendarIngestor)(nil)

// Source implements Ingestor.
func (c *CalendarIngestor) Source() models.Source {
	return models.SourceCalendar
}

type calendarListResponse struct {
	Items []struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Location    string `json:"location"`
		Status      string `json:"status"`
		Start       struct {
			DateTime string `json:"dateTime"`
			Date     string `json:"date"`
		} `json:"start"`
		Attendees []struct {
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"attendees"`
	} `json:"items"`
}

// Ingest implements Ingestor.
func (c *CalendarIngestor) Ingest(ctx context.Context, cred Credential) (models.IngestionResult, error) {
	params := url.Values{}
	params.Set("timeMin", time.Now().AddDate(0, -6, 0).UTC().Format(time.RFC3339))
	params.Set("maxResults", strconv.Itoa(c.api.maxResults))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	var list calendarListResponse
	if err := c.api.getJSON(ctx, cred, calendarEndpoint, params, &list); err != nil {
		return models.EmptyResult(models.SourceCalendar), err
	}

	people := make(map[string]*models.Person)
	var peopleOrder []string
	var moments []models.Moment

	for _, event := range list.Items {
		var peopleIDs []string
		for _, attendee := range event.Attendees {
			email := strings.ToLower(attendee.Email)
			if email == "" {
				continue
			}
			person, ok := people[email]
			if !ok {
				name := attendee.DisplayName
				if name == "" {
					name = email
				}
				person = &models.Person{
					ID:      uuid.NewString(),
					Name:    name,
					Emails:  []string{email},
					Phones:  []string{},
					Sources: []models.Source{models.SourceCalendar},
				}
				people[email] = person
				peopleOrder = append(peopleOrder, email)
			}
			person.InteractionCount++
			peopleIDs = append(peopleIDs, person.ID)
		}

		timestamp := time.Now().UTC()
		start := event.Start.DateTime
		if start == "" {
			start = event.Start.Date
		}
		if parsed, err := time.Parse(time.RFC3339, start); err == nil {
			timestamp = parsed.UTC()
		} else if parsed, err := time.Parse("2006-01-02", start); err == nil {
			timestamp = parsed.UTC()
		}

		summary := event.Summary
		if summary == "" {
			summary = "Untitled event"
		}

		moments = append(moments, models.Moment{
			ID:        uuid.NewString(),
			Source:    models.SourceCalendar,
			Timestamp: timestamp,
			Type:      models.MomentMeeting,
			Summary:   summary,
			PeopleIDs: peopleIDs,
			Metadata: map[string]any{
				"location":    event.Location,
				"description": event.Description,
				"status":      event.Status,
			},
		})
	}

	result := models.EmptyResult(models.SourceCalendar)
	for _, email := range peopleOrder {
		result.People = append(result.People, *people[email])
	}
	result.Moments = moments

	c.logger.Debug("ingested",
		zap.Int("moments", len(result.Moments)),
		zap.Int("people", len(result.People)))

	return result, nil
}
