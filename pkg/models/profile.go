package models

import "time"

// Profile is the synthesized psychological profile of a user. It is
// immutable after synthesis except for full replacement by a later
// pipeline run.
type Profile struct {
	UserID        string             `json:"userId"`
	GeneratedAt   time.Time          `json:"generatedAt"`
	Identity      Identity           `json:"identity"`
	Relationships []Relationship     `json:"relationships"`
	Psychology    Psychology         `json:"psychology"`
	Interests     []Interest         `json:"interests"`
	Communication CommunicationStyle `json:"communication"`
	Routines      []Routine          `json:"routines"`
	Values        []string           `json:"values"`
	Summary       string             `json:"summary"`
}

// Identity is core identity information inferred from the data.
type Identity struct {
	Name             string `json:"name"`
	InferredAgeRange string `json:"inferredAgeRange,omitempty"`
	Occupation       string `json:"occupation,omitempty"`
	Location         string `json:"location,omitempty"`
	SelfDescription  string `json:"selfDescription"`
}

// RelationshipType classifies an inferred relationship.
type RelationshipType string

const (
	RelationshipFamily       RelationshipType = "family"
	RelationshipFriend       RelationshipType = "friend"
	RelationshipColleague    RelationshipType = "colleague"
	RelationshipAcquaintance RelationshipType = "acquaintance"
	RelationshipOther        RelationshipType = "other"
)

// Relationship is an inferred relationship with another person.
type Relationship struct {
	PersonName string           `json:"personName"`
	Type       RelationshipType `json:"type"`
	Closeness  int              `json:"closeness"` // 1-10
	Context    string           `json:"context"`
}

// BigFiveTraits holds the five personality dimensions, each 0-1.
type BigFiveTraits struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// Psychology is the behavioral profile derived from the data.
type Psychology struct {
	BigFive           BigFiveTraits `json:"bigFive"`
	Motivations       []string      `json:"motivations"`
	Fears             []string      `json:"fears"`
	DecisionStyle     string        `json:"decisionStyle"`
	EmotionalPatterns []string      `json:"emotionalPatterns"`
}

// Interest is a topic of interest with supporting evidence.
type Interest struct {
	Topic     string   `json:"topic"`
	Intensity int      `json:"intensity"` // 1-10
	Evidence  []string `json:"evidence"`
}

// CommunicationStyle describes how the user tends to communicate.
type CommunicationStyle struct {
	Formality         int      `json:"formality"` // 1-10
	Verbosity         int      `json:"verbosity"` // 1-10
	HumorStyle        string   `json:"humorStyle"`
	PreferredChannels []string `json:"preferredChannels"`
	NotablePatterns   []string `json:"notablePatterns"`
}

// Routine is a recurring behavioral pattern.
type Routine struct {
	Description string   `json:"description"`
	Frequency   string   `json:"frequency"`
	TimeOfDay   string   `json:"timeOfDay,omitempty"`
	Evidence    []string `json:"evidence"`
}
