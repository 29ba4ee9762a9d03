package conductornode

import (
	"fmt"

	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/agent/resonance"
)

func DetectResonances(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Resonances = resonance.Detect(in.Findings, in.Threshold)
	return in, nil
}
