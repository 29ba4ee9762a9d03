package conductornode

import (
	"fmt"

	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/agent/synthesis"
)

func Synthesize(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Synthesis = synthesis.Synthesize(in.Findings, in.Resonances)
	return in, nil
}
