package content

import (
	"encoding/json"
	"fmt"

	"github.com/haashim-ali/boggart/pkg/models"
)

func buildStrategyPrompt(profile models.Profile, goal string) string {
	return fmt.Sprintf(`You are an advertising strategist. Given the following psychological profile and advertising goal, create a persuasion strategy.

PROFILE SUMMARY: %s
PSYCHOLOGY: %s
INTERESTS: %s
COMMUNICATION STYLE: %s
VALUES: %s

ADVERTISING GOAL: %s

Generate a JSON Strategy object with this exact structure:
{
  "targetSummary": string,
  "goal": string,
  "persuasionApproach": string,
  "emotionalHooks": string[],
  "personalReferences": string[],
  "tone": string,
  "callToAction": string
}

Return ONLY valid JSON matching this structure.`,
		profile.Summary,
		compactJSON(profile.Psychology),
		compactJSON(profile.Interests),
		compactJSON(profile.Communication),
		compactJSON(profile.Values),
		goal)
}

func buildVisualPrompt(profile models.Profile, strategy models.Strategy, goal string) string {
	return fmt.Sprintf(`You are a creative director. Design a visual concept for a personalized ad.

TARGET PROFILE: %s
INTERESTS: %s
STRATEGY: %s
GOAL: %s

Generate a JSON VisualConcept object with this exact structure:
{
  "description": string,
  "style": string,
  "colorPalette": string[],
  "personalElements": string[],
  "imagePrompt": string
}

Return ONLY valid JSON matching this structure.`,
		profile.Summary,
		compactJSON(topInterests(profile, 5)),
		compactJSON(strategy),
		goal)
}

func buildCopyPrompt(profile models.Profile, strategy models.Strategy, goal string) string {
	return fmt.Sprintf(`You are an ad copywriter. Write personalized ad copy.

TARGET PROFILE: %s
COMMUNICATION STYLE: %s
STRATEGY: %s
GOAL: %s

Generate a JSON Copy object with this exact structure:
{
  "headline": string,
  "body": string (MUST be under 50 words),
  "personalHooks": string[]
}

Return ONLY valid JSON matching this structure. The body MUST be under 50 words.`,
		profile.Summary,
		compactJSON(profile.Communication),
		compactJSON(strategy),
		goal)
}

func buildVideoScriptPrompt(profile models.Profile, strategy models.Strategy, goal string) string {
	return fmt.Sprintf(`You are a video ad director. Create a short video script (6-10 seconds).

TARGET PROFILE: %s
INTERESTS: %s
STRATEGY: %s
GOAL: %s

Generate a JSON VideoScript object with this exact structure:
{
  "duration": string (e.g. "8 seconds"),
  "shots": [{ "description": string, "duration": string, "movement": string, "overlayText": string? }],
  "mood": string,
  "music": string,
  "narration": string?
}

The total duration should be 6-10 seconds. Return ONLY valid JSON matching this structure.`,
		profile.Summary,
		compactJSON(topInterests(profile, 5)),
		compactJSON(strategy),
		goal)
}

func topInterests(profile models.Profile, max int) []models.Interest {
	if len(profile.Interests) <= max {
		return profile.Interests
	}
	return profile.Interests[:max]
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
