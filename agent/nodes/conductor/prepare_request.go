package conductornode

import (
	"time"

	contractx "github.com/tanpawarit/symphony/agent/contract"
)

type GraphInput struct {
	Query      string
	Seekers    []contractx.Seeker
	Threshold  float64
	Sequential bool
	StartedAt  time.Time
}

type GraphState struct {
	Query      string
	Seekers    []contractx.Seeker
	Threshold  float64
	Sequential bool
	StartedAt  time.Time

	Findings   []contractx.Finding
	Resonances []contractx.Resonance
	Synthesis  string
	Narrative  string
}

func PrepareRequest(in GraphInput) (*GraphState, error) {
	if len(in.Seekers) == 0 {
		return nil, contractx.ErrNoSeekersAvailable
	}

	return &GraphState{
		Query:      in.Query,
		Seekers:    in.Seekers,
		Threshold:  in.Threshold,
		Sequential: in.Sequential,
		StartedAt:  in.StartedAt,
	}, nil
}
