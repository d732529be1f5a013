// Package pipeline contains the per-user ingestion pipeline: the
// coordinator state machine, the entity linker, the condenser, and the
// profile synthesizer.
package pipeline

import (
	"strings"

	"github.com/haashim-ali/boggart/pkg/models"
)

// Link merges raw per-source results into one deduplicated entity
// graph. People sharing an email are merged into a single canonical
// person; moments have their people references rewritten to canonical
// ids. Link never mutates its input and is deterministic for a fixed
// input order: merge outcomes (such as which display name wins) depend
// on the supplied result order by design.
func Link(results []models.IngestionResult) models.EntityGraph {
	emailToPerson := make(map[string]*models.Person)
	idMapping := make(map[string]string) // original id -> canonical id
	var people []*models.Person

	for _, result := range results {
		for i := range result.People {
			person := result.People[i]

			normalized := normalizeEmails(person.Emails)

			existing := findCanonical(emailToPerson, normalized)
			if existing != nil {
				mergeInto(existing, &person, normalized)
				idMapping[person.ID] = existing.ID
				for _, email := range normalized {
					emailToPerson[email] = existing
				}
				continue
			}

			// New canonical person. A person with no emails is also
			// registered here; it can never be merged into.
			canonical := clonePerson(&person)
			canonical.Emails = normalized
			idMapping[person.ID] = canonical.ID
			for _, email := range normalized {
				emailToPerson[email] = canonical
			}
			people = append(people, canonical)
		}
	}

	graph := models.EntityGraph{
		People:    make([]models.Person, 0, len(people)),
		Moments:   make([]models.Moment, 0),
		Artifacts: make([]models.Artifact, 0),
	}
	for _, p := range people {
		graph.People = append(graph.People, *p)
	}

	for _, result := range results {
		for _, moment := range result.Moments {
			remapped := moment
			remapped.PeopleIDs = remapPeopleIDs(moment.PeopleIDs, idMapping)
			graph.Moments = append(graph.Moments, remapped)
		}
		graph.Artifacts = append(graph.Artifacts, result.Artifacts...)
	}

	return graph
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]bool, len(emails))
	for _, email := range emails {
		lower := strings.ToLower(email)
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	return out
}

func findCanonical(emailToPerson map[string]*models.Person, emails []string) *models.Person {
	for _, email := range emails {
		if existing, ok := emailToPerson[email]; ok {
			return existing
		}
	}
	return nil
}

// mergeInto folds person into the existing canonical record: emails,
// phones, and sources are unioned, interaction counts add, the later
// lastInteraction wins, and a non-email display name is preferred over
// an email-looking one.
func mergeInto(existing *models.Person, person *models.Person, normalizedEmails []string) {
	for _, email := range normalizedEmails {
		if !containsString(existing.Emails, email) {
			existing.Emails = append(existing.Emails, email)
		}
	}
	for _, phone := range person.Phones {
		if !containsString(existing.Phones, phone) {
			existing.Phones = append(existing.Phones, phone)
		}
	}
	for _, source := range person.Sources {
		if !containsSource(existing.Sources, source) {
			existing.Sources = append(existing.Sources, source)
		}
	}

	existing.InteractionCount += person.InteractionCount

	if person.LastInteraction != nil &&
		(existing.LastInteraction == nil || person.LastInteraction.After(*existing.LastInteraction)) {
		t := *person.LastInteraction
		existing.LastInteraction = &t
	}

	if person.Name != "" && !strings.Contains(person.Name, "@") && strings.Contains(existing.Name, "@") {
		existing.Name = person.Name
	}

	if existing.Relationship == "" {
		existing.Relationship = person.Relationship
	}
}

func clonePerson(p *models.Person) *models.Person {
	clone := *p
	clone.Emails = append([]string(nil), p.Emails...)
	clone.Phones = append([]string(nil), p.Phones...)
	clone.Sources = append([]models.Source(nil), p.Sources...)
	if p.LastInteraction != nil {
		t := *p.LastInteraction
		clone.LastInteraction = &t
	}
	return &clone
}

// remapPeopleIDs rewrites ids through the mapping and deduplicates,
// preserving first-occurrence order. Unknown ids pass through.
func remapPeopleIDs(ids []string, idMapping map[string]string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		mapped, ok := idMapping[id]
		if !ok {
			mapped = id
		}
		if seen[mapped] {
			continue
		}
		seen[mapped] = true
		out = append(out, mapped)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsSource(list []models.Source, s models.Source) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
