package models

import "time"

// MediaState is the lifecycle state of a generated media asset.
type MediaState string

const (
	MediaStateUnavailable MediaState = "unavailable"
	MediaStateGenerating  MediaState = "generating"
	MediaStateCompleted   MediaState = "completed"
	MediaStateFailed      MediaState = "failed"
)

// MediaStatus is the tagged lifecycle status of a generated image or video.
// URL is set only when completed; Error only when failed.
type MediaStatus struct {
	State MediaState `json:"status"`
	URL   string     `json:"url,omitempty"`
	Error string     `json:"error,omitempty"`
}

// MediaUnavailable returns the initial media status.
func MediaUnavailable() MediaStatus {
	return MediaStatus{State: MediaStateUnavailable}
}

// MediaGenerating returns the in-flight media status.
func MediaGenerating() MediaStatus {
	return MediaStatus{State: MediaStateGenerating}
}

// MediaCompleted returns a terminal completed status with a retrievable URL.
func MediaCompleted(url string) MediaStatus {
	return MediaStatus{State: MediaStateCompleted, URL: url}
}

// MediaFailed returns a terminal failed status.
func MediaFailed(errMsg string) MediaStatus {
	return MediaStatus{State: MediaStateFailed, Error: errMsg}
}

// CanTransition reports whether a media asset may move from one state to
// the next. Images may jump straight from unavailable to a terminal state;
// video must pass through generating. Terminal states never change.
func (s MediaState) CanTransition(next MediaState) bool {
	switch s {
	case MediaStateUnavailable:
		return next != MediaStateUnavailable
	case MediaStateGenerating:
		return next == MediaStateCompleted || next == MediaStateFailed
	default:
		return false
	}
}

// Strategy is a persuasion strategy tailored to one profile and goal.
type Strategy struct {
	TargetSummary      string   `json:"targetSummary"`
	Goal               string   `json:"goal"`
	PersuasionApproach string   `json:"persuasionApproach"`
	EmotionalHooks     []string `json:"emotionalHooks"`
	PersonalReferences []string `json:"personalReferences"`
	Tone               string   `json:"tone"`
	CallToAction       string   `json:"callToAction"`
}

// VisualConcept describes the visual direction for a content piece.
type VisualConcept struct {
	Description      string      `json:"description"`
	Style            string      `json:"style"`
	ColorPalette     []string    `json:"colorPalette"`
	PersonalElements []string    `json:"personalElements"`
	ImagePrompt      string      `json:"imagePrompt"`
	GeneratedImage   MediaStatus `json:"generatedImage"`
}

// Copy is personalized ad copy.
type Copy struct {
	Headline      string   `json:"headline"`
	Body          string   `json:"body"`
	PersonalHooks []string `json:"personalHooks"`
}

// Shot is a single shot in a video script.
type Shot struct {
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Movement    string `json:"movement"`
	OverlayText string `json:"overlayText,omitempty"`
}

// VideoScript is a short (6-10 second) video script.
type VideoScript struct {
	Duration       string      `json:"duration"`
	Shots          []Shot      `json:"shots"`
	Mood           string      `json:"mood"`
	Music          string      `json:"music"`
	Narration      string      `json:"narration,omitempty"`
	GeneratedVideo MediaStatus `json:"generatedVideo"`
}

// GeneratedContent is one complete content bundle for a goal. The bundle
// is immutable after creation; media lifecycle updates are published to
// the media status store and joined back in by readers.
type GeneratedContent struct {
	ID          string        `json:"id"`
	Goal        string        `json:"goal"`
	Strategy    Strategy      `json:"strategy"`
	Visual      VisualConcept `json:"visual"`
	Copy        Copy          `json:"copy"`
	VideoScript VideoScript   `json:"videoScript"`
	GeneratedAt time.Time     `json:"generatedAt"`
}
