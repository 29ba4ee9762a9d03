package conductornode

import (
	"fmt"
	"time"

	contractx "github.com/tanpawarit/symphony/agent/contract"
)

func AssembleSymphony(in *GraphState, nowFn func() time.Time, newID func() string) (*contractx.Symphony, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	findings := in.Findings
	if findings == nil {
		findings = []contractx.Finding{}
	}
	resonances := in.Resonances
	if resonances == nil {
		resonances = []contractx.Resonance{}
	}

	return &contractx.Symphony{
		ID:         newID(),
		Query:      in.Query,
		Findings:   findings,
		Resonances: resonances,
		Synthesis:  in.Synthesis,
		Narrative:  in.Narrative,
		Duration:   nowFn().Sub(in.StartedAt),
	}, nil
}
