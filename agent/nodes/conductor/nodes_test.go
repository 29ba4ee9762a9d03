package conductornode

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/symphony/agent/contract"
)

type stubSeeker struct {
	name     string
	findings []contractx.Finding
	err      error
	panics   bool
}

func (s stubSeeker) Name() string { return s.name }

func (s stubSeeker) Seek(ctx context.Context, query string) ([]contractx.Finding, error) {
	if s.panics {
		panic("seeker exploded")
	}
	return s.findings, s.err
}

func TestPrepareRequestRequiresSeekers(t *testing.T) {
	t.Parallel()

	if _, err := PrepareRequest(GraphInput{Query: "q"}); !errors.Is(err, contractx.ErrNoSeekersAvailable) {
		t.Fatalf("PrepareRequest() error = %v, want ErrNoSeekersAvailable", err)
	}

	state, err := PrepareRequest(GraphInput{Query: "q", Seekers: []contractx.Seeker{stubSeeker{name: "a"}}, Threshold: 0.5})
	if err != nil {
		t.Fatalf("PrepareRequest() error = %v", err)
	}
	if state.Query != "q" || state.Threshold != 0.5 || len(state.Seekers) != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestGatherFindingsIsolation(t *testing.T) {
	t.Parallel()

	seekers := []contractx.Seeker{
		stubSeeker{name: "ok", findings: []contractx.Finding{{Source: "ok", Content: "one"}, {Source: "ok", Content: "two"}}},
		stubSeeker{name: "err", err: errors.New("nope")},
		stubSeeker{name: "panic", panics: true},
		stubSeeker{name: "last", findings: []contractx.Finding{{Source: "last", Content: "three"}}},
	}

	for _, sequential := range []bool{false, true} {
		state, err := GatherFindings(context.Background(), &GraphState{Seekers: seekers, Sequential: sequential})
		if err != nil {
			t.Fatalf("sequential=%v: GatherFindings() error = %v", sequential, err)
		}
		got := make([]string, 0, len(state.Findings))
		for _, f := range state.Findings {
			got = append(got, f.Content)
		}
		if len(got) != 3 || got[0] != "one" || got[1] != "two" || got[2] != "three" {
			t.Fatalf("sequential=%v: findings = %v", sequential, got)
		}
	}
}

func TestGatherFindingsEmpty(t *testing.T) {
	t.Parallel()

	state, err := GatherFindings(context.Background(), &GraphState{Seekers: []contractx.Seeker{stubSeeker{name: "none"}}})
	if err != nil {
		t.Fatalf("GatherFindings() error = %v", err)
	}
	if state.Findings == nil || len(state.Findings) != 0 {
		t.Fatalf("expected empty non-nil findings, got %#v", state.Findings)
	}
}

func TestNilStateRejected(t *testing.T) {
	t.Parallel()

	if _, err := GatherFindings(context.Background(), nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("GatherFindings(nil) error = %v", err)
	}
	if _, err := DetectResonances(nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("DetectResonances(nil) error = %v", err)
	}
	if _, err := Synthesize(nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Synthesize(nil) error = %v", err)
	}
	if _, err := Narrate(context.Background(), nil, nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Narrate(nil) error = %v", err)
	}
	if _, err := AssembleSymphony(nil, time.Now, func() string { return "" }); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("AssembleSymphony(nil) error = %v", err)
	}
}

func TestAssembleSymphony(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	state := &GraphState{Query: "q", StartedAt: start, Synthesis: "No findings to synthesize."}

	symphony, err := AssembleSymphony(state, func() time.Time { return start.Add(1500 * time.Millisecond) }, func() string { return "id-1" })
	if err != nil {
		t.Fatalf("AssembleSymphony() error = %v", err)
	}
	if symphony.ID != "id-1" || symphony.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected symphony: %+v", symphony)
	}
	if symphony.Findings == nil || symphony.Resonances == nil {
		t.Fatal("findings and resonances must be non-nil")
	}
}

func TestDetectAndSynthesize(t *testing.T) {
	t.Parallel()

	state := &GraphState{
		Threshold: 0.3,
		Findings: []contractx.Finding{
			{Source: "a", Content: "wind farms expand offshore", Confidence: 0.6},
			{Source: "b", Content: "wind farms expand offshore", Confidence: 0.8},
		},
	}
	state, err := DetectResonances(state)
	if err != nil {
		t.Fatalf("DetectResonances() error = %v", err)
	}
	if len(state.Resonances) != 1 {
		t.Fatalf("expected one resonance, got %d", len(state.Resonances))
	}
	state, err = Synthesize(state)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if state.Synthesis == "" {
		t.Fatal("synthesis is empty")
	}
}
