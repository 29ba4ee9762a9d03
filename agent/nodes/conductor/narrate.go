package conductornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/symphony/agent/contract"
)

// Narrate asks the optional narrator for prose. Narration is best effort: a
// failure leaves the narrative empty.
func Narrate(ctx context.Context, in *GraphState, narrator contractx.Narrator) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if narrator == nil || len(in.Findings) == 0 {
		return in, nil
	}

	text, err := narrator.Narrate(ctx, contractx.NarrationRequest{
		Query:      in.Query,
		Synthesis:  in.Synthesis,
		Resonances: in.Resonances,
		Findings:   in.Findings,
	})
	if err != nil {
		log.Warn().Err(err).Str("query", in.Query).Msg("narration failed")
		return in, nil
	}

	in.Narrative = strings.TrimSpace(text)
	return in, nil
}
