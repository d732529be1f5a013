package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/haashim-ali/boggart/pkg/models"
)

// buildSynthesisPrompt assembles the single structured-generation
// request for profile synthesis. With a digest available the digest is
// the primary source plus raw entity counts; without one, truncated raw
// samples are embedded directly.
func buildSynthesisPrompt(graph models.EntityGraph, userID, digest string) string {
	var dataSection string
	if digest != "" {
		dataSection = fmt.Sprintf(`ANALYZED DATA (AI-condensed summaries from raw data — use these as your PRIMARY source):

%s

RAW ENTITY COUNTS (for additional context):
- %d contacts discovered
- %d events/interactions
- %d digital artifacts`,
			digest, len(graph.People), len(graph.Moments), len(graph.Artifacts))
	} else {
		dataSection = fmt.Sprintf(`DATA:
- People they interact with (%d contacts): %s
- Life moments (%d events): %s
- Digital artifacts (%d items): %s`,
			len(graph.People), compactJSON(sampleSlice(graph.People, 50)),
			len(graph.Moments), compactJSON(sampleSlice(graph.Moments, 100)),
			len(graph.Artifacts), compactJSON(sampleSlice(graph.Artifacts, 50)))
	}

	return fmt.Sprintf(`You are a psychological profiler. Analyze the following data about a person and generate a comprehensive psychological profile.

%s

Generate a JSON Profile object with this exact structure:
{
  "userId": "%s",
  "generatedAt": "%s",
  "identity": { "name": string, "inferredAgeRange": string?, "occupation": string?, "location": string?, "selfDescription": string },
  "relationships": [{ "personName": string, "type": "family"|"friend"|"colleague"|"acquaintance"|"other", "closeness": 1-10, "context": string }],
  "psychology": {
    "bigFive": { "openness": 0-1, "conscientiousness": 0-1, "extraversion": 0-1, "agreeableness": 0-1, "neuroticism": 0-1 },
    "motivations": string[],
    "fears": string[],
    "decisionStyle": string,
    "emotionalPatterns": string[]
  },
  "interests": [{ "topic": string, "intensity": 1-10, "evidence": string[] }],
  "communication": { "formality": 1-10, "verbosity": 1-10, "humorStyle": string, "preferredChannels": string[], "notablePatterns": string[] },
  "routines": [{ "description": string, "frequency": string, "timeOfDay": string?, "evidence": string[] }],
  "values": string[],
  "summary": string
}

Return ONLY valid JSON matching this structure.`,
		dataSection, userID, time.Now().UTC().Format(time.RFC3339))
}

func sampleSlice[T any](items []T, max int) []T {
	if len(items) <= max {
		return items
	}
	return items[:max]
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
