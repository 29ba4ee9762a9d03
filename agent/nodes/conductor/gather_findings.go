package conductornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	contractx "github.com/tanpawarit/symphony/agent/contract"
)

// GatherFindings runs every selected seeker and concatenates what they
// return. In parallel mode all seekers run at once and the node waits for
// every one of them; a failing or panicking seeker contributes nothing and
// never cancels its siblings.
func GatherFindings(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	findings := make([]contractx.Finding, 0)
	if in.Sequential {
		for _, seeker := range in.Seekers {
			findings = append(findings, runSeeker(ctx, seeker, in.Query)...)
		}
	} else {
		// One slot per seeker so nothing is written to findings until the
		// barrier has passed.
		slots := make([][]contractx.Finding, len(in.Seekers))
		var wg conc.WaitGroup
		for i, seeker := range in.Seekers {
			wg.Go(func() {
				slots[i] = runSeeker(ctx, seeker, in.Query)
			})
		}
		wg.Wait()

		for _, slot := range slots {
			findings = append(findings, slot...)
		}
	}

	in.Findings = findings
	return in, nil
}

func runSeeker(ctx context.Context, seeker contractx.Seeker, query string) []contractx.Finding {
	var (
		found []contractx.Finding
		name  string
	)

	var catcher panics.Catcher
	catcher.Try(func() {
		name = seeker.Name()
		out, err := seeker.Seek(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("seeker", name).Msg("seeker failed, contributing no findings")
			return
		}
		found = out
	})

	if recovered := catcher.Recovered(); recovered != nil {
		log.Error().Err(recovered.AsError()).Str("seeker", name).Msg("seeker panicked, contributing no findings")
		return nil
	}

	log.Debug().Str("seeker", name).Int("findings", len(found)).Msg("seeker finished")
	return found
}
