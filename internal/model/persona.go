package model

import "time"

// Trait represents one inferred characteristic of the analyzed user
type Trait struct {
	Label     string   `json:"label"`               // Section label (e.g., "Motivations")
	Bullets   []string `json:"bullets,omitempty"`   // Description bullets in model output order
	Citations []string `json:"citations,omitempty"` // Supporting permalinks; empty means no evidence
}

// NoEvidence is the citation sentinel used when a trait has no supporting permalink.
const NoEvidence = "No evidence found"

// Persona represents the complete synthesis result for one user
type Persona struct {
	Username    string    `json:"username"`
	ProfileURL  string    `json:"profile_url"`
	GeneratedAt time.Time `json:"generated_at"`
	Provider    string    `json:"provider,omitempty"` // groq, openai, ollama
	Model       string    `json:"model,omitempty"`

	Traits []Trait `json:"traits"`

	Raw        string   `json:"raw,omitempty"` // Verbatim model output
	TokensUsed int      `json:"tokens_used,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Sections is the fixed persona skeleton, in output order.
// The prompt instructs the model to emit exactly these headers and the
// parser maps citations back section by section.
var Sections = []string{
	"Name",
	"Age",
	"Occupation",
	"Location",
	"Motivations",
	"Personality Traits",
	"Behavioral Patterns",
	"Frustrations",
	"Goals & Needs",
	"Interests",
	"Values",
	"Writing Style",
	"Online Behavior",
}
