package contract

import (
	"time"
)

const (
	SeekerTruth    = "truth"
	SeekerScholar  = "scholar"
	SeekerCommerce = "commerce"
	SeekerSource   = "source"
	SeekerRival    = "rival"
	SeekerNetwork  = "network"
	SeekerLore     = "lore"
)

// DefaultResonanceThreshold is the minimum similarity for two findings to
// converge when the caller does not supply one.
const DefaultResonanceThreshold = 0.3

type Finding struct {
	Source     string    `json:"source"`
	Content    string    `json:"content"`
	URL        string    `json:"url,omitempty"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

type Resonance struct {
	Findings []Finding `json:"findings"`
	Strength float64   `json:"strength"`
	Pattern  string    `json:"pattern"`
}

type Symphony struct {
	ID         string        `json:"id"`
	Query      string        `json:"query"`
	Findings   []Finding     `json:"findings"`
	Resonances []Resonance   `json:"resonances"`
	Synthesis  string        `json:"synthesis"`
	Narrative  string        `json:"narrative,omitempty"`
	Duration   time.Duration `json:"duration"`
}

type NarrationRequest struct {
	Query      string      `json:"query"`
	Synthesis  string      `json:"synthesis"`
	Resonances []Resonance `json:"resonances,omitempty"`
	Findings   []Finding   `json:"findings,omitempty"`
}
