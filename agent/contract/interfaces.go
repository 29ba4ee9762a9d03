package contract

import "context"

// Seeker is one information source. A failed lookup is reported through the
// error return; callers treat it as zero findings.
type Seeker interface {
	Name() string
	Seek(ctx context.Context, query string) ([]Finding, error)
}

// Narrator turns an assembled synthesis into prose.
type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (string, error)
}
