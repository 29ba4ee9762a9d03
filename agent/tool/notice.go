package tool

import (
	"time"

	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/agent/resonance"
)

// Notice is the compact summary published after each symphony.
type Notice struct {
	SymphonyID        string        `json:"symphony_id"`
	Query             string        `json:"query"`
	Findings          int           `json:"findings"`
	Resonances        int           `json:"resonances"`
	Sources           []string      `json:"sources"`
	StrongestPattern  string        `json:"strongest_pattern,omitempty"`
	StrongestStrength float64       `json:"strongest_strength"`
	Duration          time.Duration `json:"duration"`
}

func NewNotice(s *contractx.Symphony) Notice {
	n := Notice{
		SymphonyID: s.ID,
		Query:      s.Query,
		Findings:   len(s.Findings),
		Resonances: len(s.Resonances),
		Sources:    resonance.UniqueSources(s.Findings),
		Duration:   s.Duration,
	}
	if len(s.Resonances) > 0 {
		n.StrongestPattern = s.Resonances[0].Pattern
		n.StrongestStrength = s.Resonances[0].Strength
	}
	return n
}
