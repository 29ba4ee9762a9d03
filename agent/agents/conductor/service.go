// Package conductor runs a query against a selectable set of seekers and
// assembles the results into a Symphony.
package conductor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/symphony/agent/contract"
	nodex "github.com/tanpawarit/symphony/agent/nodes/conductor"
)

var ErrNoSeekersAvailable = contractx.ErrNoSeekersAvailable

// Options tunes a single Perform call. The zero value runs every registered
// seeker in parallel with the default resonance threshold.
type Options struct {
	// Seekers names the seekers to run. Unknown names are ignored; an empty
	// selection falls back to every registered seeker.
	Seekers []string
	// ResonanceThreshold overrides the default 0.3. Values are clamped to [0,1].
	ResonanceThreshold *float64
	// Sequential runs seekers one at a time in selection order.
	Sequential bool
}

type Option func(*Conductor)

func WithSeekers(seekers ...contractx.Seeker) Option {
	return func(c *Conductor) {
		for _, s := range seekers {
			if err := c.register(s); err != nil {
				log.Warn().Err(err).Msg("skipping seeker")
			}
		}
	}
}

func WithNarrator(narrator contractx.Narrator) Option {
	return func(c *Conductor) {
		c.narrator = narrator
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Conductor) {
		if now != nil {
			c.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Conductor) {
		if newID != nil {
			c.newID = newID
		}
	}
}

type Conductor struct {
	mu      sync.RWMutex
	seekers map[string]contractx.Seeker
	order   []string

	narrator    contractx.Narrator
	graphRunner compose.Runnable[nodex.GraphInput, *contractx.Symphony]

	now   func() time.Time
	newID func() string
}

func New(opts ...Option) (*Conductor, error) {
	c := &Conductor{
		seekers: make(map[string]contractx.Seeker),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	graphRunner, err := c.compilePerformGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// AddSeeker registers s under s.Name(). A seeker already registered under
// that name is replaced in place.
func (c *Conductor) AddSeeker(s contractx.Seeker) error {
	return c.register(s)
}

func (c *Conductor) register(s contractx.Seeker) error {
	if s == nil {
		return fmt.Errorf("%w: seeker is nil", contractx.ErrValidation)
	}
	name := strings.TrimSpace(s.Name())
	if name == "" {
		return fmt.Errorf("%w: seeker name is empty", contractx.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.seekers[name]; !exists {
		c.order = append(c.order, name)
	}
	c.seekers[name] = s
	return nil
}

// Seekers lists registered seeker names in registration order.
func (c *Conductor) Seekers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

func (c *Conductor) Seeker(name string) (contractx.Seeker, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.seekers[strings.TrimSpace(name)]
	return s, ok
}

// Perform runs query through the selected seekers and returns the assembled
// Symphony. The only error a caller sees for well-formed input is
// ErrNoSeekersAvailable; individual seeker failures are absorbed.
func (c *Conductor) Perform(ctx context.Context, query string, opts Options) (*contractx.Symphony, error) {
	startedAt := c.now()

	selected := c.selectSeekers(opts.Seekers)
	if len(selected) == 0 {
		return nil, ErrNoSeekersAvailable
	}

	threshold := resolveThreshold(opts.ResonanceThreshold)
	log.Info().
		Str("query", query).
		Int("seekers", len(selected)).
		Float64("threshold", threshold).
		Bool("sequential", opts.Sequential).
		Msg("performing symphony")

	symphony, err := c.graphRunner.Invoke(ctx, nodex.GraphInput{
		Query:      query,
		Seekers:    selected,
		Threshold:  threshold,
		Sequential: opts.Sequential,
		StartedAt:  startedAt,
	})
	if err != nil {
		if errors.Is(err, ErrNoSeekersAvailable) {
			return nil, ErrNoSeekersAvailable
		}
		return nil, fmt.Errorf("perform symphony: %w", err)
	}

	log.Info().
		Str("symphony_id", symphony.ID).
		Int("findings", len(symphony.Findings)).
		Int("resonances", len(symphony.Resonances)).
		Dur("duration", symphony.Duration).
		Msg("symphony performed")
	return symphony, nil
}

func (c *Conductor) selectSeekers(names []string) []contractx.Seeker {
	c.mu.RLock()
	defer c.mu.RUnlock()

	selected := make([]contractx.Seeker, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if _, dup := seen[name]; dup {
			continue
		}
		s, ok := c.seekers[name]
		if !ok {
			log.Debug().Str("seeker", name).Msg("ignoring unknown seeker")
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, s)
	}

	if len(selected) == 0 {
		for _, name := range c.order {
			selected = append(selected, c.seekers[name])
		}
	}
	return selected
}

func resolveThreshold(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return contractx.DefaultResonanceThreshold
	}
	return math.Min(1, math.Max(0, *v))
}
