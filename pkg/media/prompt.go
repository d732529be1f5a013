package media

import (
	"fmt"
	"strings"

	"github.com/haashim-ali/boggart/pkg/models"
)

// buildVideoPrompt assembles the generation prompt deterministically
// from the content bundle's visual concept, copy, and video script.
func buildVideoPrompt(content models.GeneratedContent) string {
	visual := content.Visual
	script := content.VideoScript

	shots := make([]string, 0, len(script.Shots))
	for i, shot := range script.Shots {
		shots = append(shots, fmt.Sprintf("Shot %d (%s): %s — %s",
			i+1, shot.Duration, shot.Description, shot.Movement))
	}

	parts := []string{
		fmt.Sprintf("Create a %s advertisement video.", script.Duration),
		fmt.Sprintf("Visual style: %s. %s", visual.Style, visual.Description),
		fmt.Sprintf("Headline: %q", content.Copy.Headline),
		fmt.Sprintf("Mood: %s. Music feel: %s.", script.Mood, script.Music),
		"Shots: " + strings.Join(shots, ". "),
	}
	if script.Narration != "" {
		parts = append(parts, fmt.Sprintf("Narration: %q", script.Narration))
	}

	return strings.Join(parts, " ")
}
