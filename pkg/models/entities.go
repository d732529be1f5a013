package models

import "time"

// Source identifies the external system an entity was ingested from.
type Source string

const (
	SourceGmail    Source = "gmail"
	SourceCalendar Source = "calendar"
	SourceContacts Source = "contacts"
	SourceYouTube  Source = "youtube"
	SourceDrive    Source = "drive"
)

// Person is a single identity, possibly merged across multiple sources.
// Emails are stored normalized (lower-case) and unique within a person.
type Person struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Emails           []string   `json:"emails"`
	Phones           []string   `json:"phones"`
	Relationship     string     `json:"relationship,omitempty"`
	Sources          []Source   `json:"sources"`
	InteractionCount int        `json:"interactionCount"`
	LastInteraction  *time.Time `json:"lastInteraction,omitempty"`
}

// MomentType classifies a timestamped event.
type MomentType string

const (
	MomentEmailSent        MomentType = "email_sent"
	MomentEmailReceived    MomentType = "email_received"
	MomentMeeting          MomentType = "meeting"
	MomentDocumentEdit     MomentType = "document_edit"
	MomentVideoInteraction MomentType = "video_interaction"
	MomentSubscription     MomentType = "subscription"
)

// Moment is a timestamped event or interaction. PeopleIDs are weak
// references into the owning graph's person set.
type Moment struct {
	ID        string         `json:"id"`
	Source    Source         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Type      MomentType     `json:"type"`
	Summary   string         `json:"summary"`
	PeopleIDs []string       `json:"peopleIds"`
	Metadata  map[string]any `json:"metadata"`
}

// ArtifactType classifies a digital artifact.
type ArtifactType string

const (
	ArtifactDocument     ArtifactType = "document"
	ArtifactSpreadsheet  ArtifactType = "spreadsheet"
	ArtifactPresentation ArtifactType = "presentation"
	ArtifactVideo        ArtifactType = "video"
	ArtifactImage        ArtifactType = "image"
	ArtifactChannel      ArtifactType = "channel"
	ArtifactOther        ArtifactType = "other"
)

// Artifact is a non-event object (file, video, channel subscription, ...).
// Artifacts carry no identity and are never merged.
type Artifact struct {
	ID          string         `json:"id"`
	Source      Source         `json:"source"`
	Type        ArtifactType   `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
	ModifiedAt  *time.Time     `json:"modifiedAt,omitempty"`
	Metadata    map[string]any `json:"metadata"`
}

// EntityGraph is the deduplicated union of all discovered entities.
type EntityGraph struct {
	People    []Person   `json:"people"`
	Moments   []Moment   `json:"moments"`
	Artifacts []Artifact `json:"artifacts"`
}

// IngestionResult is the raw, unmerged output of a single ingestion worker.
type IngestionResult struct {
	Source    Source     `json:"source"`
	People    []Person   `json:"people"`
	Moments   []Moment   `json:"moments"`
	Artifacts []Artifact `json:"artifacts"`
}

// ItemCount returns the total number of entities in the result.
func (r IngestionResult) ItemCount() int {
	return len(r.People) + len(r.Moments) + len(r.Artifacts)
}

// EmptyResult returns an ingestion result with no entities for the source.
func EmptyResult(source Source) IngestionResult {
	return IngestionResult{
		Source:    source,
		People:    []Person{},
		Moments:   []Moment{},
		Artifacts: []Artifact{},
	}
}
