package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/llm"
	"github.com/haashim-ali/boggart/pkg/models"
)

// condenseBatchSize is the fixed number of items per summarization call.
const condenseBatchSize = 50

// BatchSummarizer condenses one batch of rendered items for a labeled
// domain into natural language. Callers must tolerate arbitrary output.
type BatchSummarizer interface {
	CondenseBatch(ctx context.Context, domain string, items []string) (string, error)
}

type llmSummarizer struct {
	client llm.TextClient
}

// NewLLMSummarizer backs a BatchSummarizer with a text-generation client.
func NewLLMSummarizer(client llm.TextClient) BatchSummarizer {
	return &llmSummarizer{client: client}
}

func (s *llmSummarizer) CondenseBatch(ctx context.Context, domain string, items []string) (string, error) {
	prompt := fmt.Sprintf(`You are condensing a batch of %s for later psychological analysis.

ITEMS:
%s

Write a dense prose summary of the recurring themes, topics, relationships, and behavioral patterns in these items. Keep every concrete detail that reveals personality, interests, routines, or relationships. Do not add commentary about the task itself.`,
		domain, strings.Join(items, "\n"))

	return s.client.Complete(ctx, prompt)
}

// Condenser compresses an entity graph into a sectioned natural-language
// digest. Each data source is summarized independently in fixed-size
// batches; all batches across all sources are fanned out concurrently.
type Condenser struct {
	summarizer BatchSummarizer
	pool       *llm.WorkerPool
	batchSize  int
	logger     *zap.Logger
}

// NewCondenser creates a condenser with the fixed batch size.
func NewCondenser(summarizer BatchSummarizer, pool *llm.WorkerPool, logger *zap.Logger) *Condenser {
	return &Condenser{
		summarizer: summarizer,
		pool:       pool,
		batchSize:  condenseBatchSize,
		logger:     logger.Named("condenser"),
	}
}

// condenseSource groups one source's rendered items under its domain
// label and digest section heading.
type condenseSource struct {
	key     string
	domain  string
	heading string
	label   string // for the "no data" placeholder
	items   []string
}

// Condense produces the digest. A failed batch fails the whole call.
func (c *Condenser) Condense(ctx context.Context, graph models.EntityGraph) (string, error) {
	peopleByID := make(map[string]models.Person, len(graph.People))
	for _, p := range graph.People {
		peopleByID[p.ID] = p
	}

	sources := []condenseSource{
		{
			key:     "email",
			domain:  "email communications",
			heading: "== EMAIL ANALYSIS ==",
			label:   "email",
			items:   renderEmails(graph, peopleByID),
		},
		{
			key:     "youtube",
			domain:  "YouTube activity (subscriptions and liked videos)",
			heading: "== YOUTUBE ANALYSIS ==",
			label:   "YouTube",
			items:   renderYouTube(graph),
		},
		{
			key:     "calendar",
			domain:  "calendar meetings and events",
			heading: "== CALENDAR ANALYSIS ==",
			label:   "calendar",
			items:   renderCalendar(graph, peopleByID),
		},
		{
			key:     "drive",
			domain:  "Google Drive files and documents",
			heading: "== DRIVE ANALYSIS ==",
			label:   "Drive",
			items:   renderDrive(graph),
		},
	}

	// One work item per batch, all sources together, unordered fan-out.
	var work []llm.WorkItem[string]
	for _, src := range sources {
		src := src
		for batchIdx, batch := range chunk(src.items, c.batchSize) {
			batch := batch
			work = append(work, llm.WorkItem[string]{
				ID: fmt.Sprintf("%s-%d", src.key, batchIdx),
				Execute: func(ctx context.Context) (string, error) {
					return c.summarizer.CondenseBatch(ctx, src.domain, batch)
				},
			})
		}
	}

	c.logger.Debug("condensing", zap.Int("batches", len(work)))

	summaries := make(map[string]string, len(work))
	for _, result := range llm.Process(ctx, c.pool, work) {
		if result.Err != nil {
			return "", fmt.Errorf("condense batch %s: %w", result.ID, result.Err)
		}
		summaries[result.ID] = result.Result
	}

	// Reassemble per-source summaries in batch order, then fixed-order
	// sections with the directly rendered contacts in the middle.
	var out []string
	for _, src := range sources {
		section := joinBatches(src.key, len(chunk(src.items, c.batchSize)), summaries)
		if section == "" {
			section = fmt.Sprintf("No %s data available.", src.label)
		}
		out = append(out, src.heading+"\n"+section)

		if src.key == "calendar" {
			out = append(out, "== CONTACTS ==\n"+renderContacts(graph.People))
		}
	}

	return strings.Join(out, "\n\n"), nil
}

func joinBatches(key string, count int, summaries map[string]string) string {
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		parts = append(parts, summaries[fmt.Sprintf("%s-%d", key, i)])
	}
	return strings.Join(parts, "\n\n")
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

func renderEmails(graph models.EntityGraph, peopleByID map[string]models.Person) []string {
	var out []string
	for _, m := range graph.Moments {
		if m.Source != models.SourceGmail {
			continue
		}
		direction := "From"
		if m.Type == models.MomentEmailSent {
			direction = "To"
		}
		subject := metaString(m.Metadata, "subject")
		if subject == "" {
			subject = m.Summary
		}
		body := metaString(m.Metadata, "body")
		if body == "" {
			body = metaString(m.Metadata, "snippet")
		}
		out = append(out, fmt.Sprintf("%s | %s: %s | %s | %s",
			m.Timestamp.Format(time.RFC3339), direction, peopleNames(m.PeopleIDs, peopleByID), subject, body))
	}
	return out
}

func renderYouTube(graph models.EntityGraph) []string {
	var subs, likes []string
	for _, a := range graph.Artifacts {
		if a.Source != models.SourceYouTube {
			continue
		}
		switch a.Type {
		case models.ArtifactChannel:
			line := "[Sub] " + a.Title
			if a.Description != "" {
				line += " - " + truncateRunes(a.Description, 200)
			}
			subs = append(subs, line)
		case models.ArtifactVideo:
			channel := metaString(a.Metadata, "channelTitle")
			if channel == "" {
				channel = "Unknown"
			}
			line := fmt.Sprintf("[Liked] %s (by %s)", a.Title, channel)
			if tags := metaStrings(a.Metadata, "tags"); len(tags) > 0 {
				line += " - tags: " + strings.Join(tags, ", ")
			}
			if a.Description != "" {
				line += " - " + truncateRunes(a.Description, 200)
			}
			likes = append(likes, line)
		}
	}
	return append(subs, likes...)
}

func renderCalendar(graph models.EntityGraph, peopleByID map[string]models.Person) []string {
	var out []string
	for _, m := range graph.Moments {
		if m.Source != models.SourceCalendar {
			continue
		}
		attendees := peopleNames(m.PeopleIDs, peopleByID)
		if attendees == "" {
			attendees = "none"
		}
		location := metaString(m.Metadata, "location")
		if location == "" {
			location = "none"
		}
		out = append(out, fmt.Sprintf("%s | %s | Attendees: %s | Location: %s",
			m.Timestamp.Format(time.RFC3339), m.Summary, attendees, location))
	}
	return out
}

func renderDrive(graph models.EntityGraph) []string {
	var out []string
	for _, a := range graph.Artifacts {
		if a.Source != models.SourceDrive {
			continue
		}
		modified := "unknown"
		if a.ModifiedAt != nil {
			modified = a.ModifiedAt.Format(time.RFC3339)
		}
		out = append(out, fmt.Sprintf("%s | %s | Modified: %s", a.Title, a.Type, modified))
	}
	return out
}

// renderContacts produces the structured contacts section directly;
// contacts never go through summarization.
func renderContacts(people []models.Person) string {
	if len(people) == 0 {
		return "No contacts available."
	}

	sorted := make([]models.Person, len(people))
	copy(sorted, people)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InteractionCount > sorted[j].InteractionCount
	})

	lines := make([]string, 0, len(sorted))
	for _, p := range sorted {
		sources := make([]string, 0, len(p.Sources))
		for _, s := range p.Sources {
			sources = append(sources, string(s))
		}
		lines = append(lines, fmt.Sprintf("%s | %s | %d interactions | Sources: %s",
			p.Name, strings.Join(p.Emails, ", "), p.InteractionCount, strings.Join(sources, ", ")))
	}
	return strings.Join(lines, "\n")
}

func peopleNames(ids []string, peopleByID map[string]models.Person) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := peopleByID[id]; ok {
			names = append(names, p.Name)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, ", ")
}

func metaString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}

func metaStrings(metadata map[string]any, key string) []string {
	if metadata == nil {
		return nil
	}
	switch v := metadata[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
