// Package memory keeps a bounded, in-process history of past symphonies and
// answers recall queries over it.
package memory

import (
	"math"
	"sort"
	"sync"
	"time"

	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/agent/resonance"
)

const (
	DefaultCapacity     = 100
	DefaultSimilarLimit = 5

	// similarityFloor is exclusive: a record must score strictly above it.
	similarityFloor = 0.3

	topFindingCount = 3
	previewMaxRunes = 100
	previewEllipsis = "..."
)

// Record is the compressed projection of a Symphony kept in memory.
type Record struct {
	SymphonyID        string        `json:"symphony_id,omitempty"`
	Query             string        `json:"query"`
	Timestamp         time.Time     `json:"timestamp"`
	TopFindings       []string      `json:"top_findings"`
	ResonanceStrength float64       `json:"resonance_strength"`
	Duration          time.Duration `json:"duration"`
}

// Insights summarises the stored history.
type Insights struct {
	TotalSearches int           `json:"total_searches"`
	AvgDuration   time.Duration `json:"avg_duration"`
	AvgResonance  int           `json:"avg_resonance"`
}

// Option customizes Store.
type Option func(*Store)

func WithCapacity(capacity int) Option {
	return func(s *Store) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a FIFO-bounded research history. All methods are safe for
// concurrent use; append and eviction happen under one lock.
type Store struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
	now      func() time.Time
}

func New(opts ...Option) *Store {
	s := &Store{
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Remember projects symphony into a Record and appends it, evicting the
// oldest records beyond capacity.
func (s *Store) Remember(symphony *contractx.Symphony) Record {
	rec := s.project(symphony)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.evictLocked()
	return rec
}

func (s *Store) project(symphony *contractx.Symphony) Record {
	rec := Record{
		Timestamp:   s.now().UTC(),
		TopFindings: []string{},
	}
	if symphony == nil {
		return rec
	}

	rec.SymphonyID = symphony.ID
	rec.Query = symphony.Query
	rec.Duration = symphony.Duration
	if len(symphony.Resonances) > 0 {
		rec.ResonanceStrength = symphony.Resonances[0].Strength
	}

	ranked := append([]contractx.Finding(nil), symphony.Findings...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	if len(ranked) > topFindingCount {
		ranked = ranked[:topFindingCount]
	}
	for _, f := range ranked {
		rec.TopFindings = append(rec.TopFindings, preview(f.Content))
	}
	return rec
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewMaxRunes {
		runes = runes[:previewMaxRunes]
	}
	return string(runes) + previewEllipsis
}

func (s *Store) evictLocked() {
	if over := len(s.records) - s.capacity; over > 0 {
		kept := make([]Record, s.capacity)
		copy(kept, s.records[over:])
		s.records = kept
	}
}

type scored struct {
	record     Record
	similarity float64
}

// FindSimilar returns up to limit records whose stored query is more than
// 0.3 similar to query, most similar first.
func (s *Store) FindSimilar(query string, limit int) []Record {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	s.mu.RLock()
	candidates := make([]scored, 0, len(s.records))
	for _, rec := range s.records {
		sim := resonance.Similarity(query, rec.Query)
		if sim > similarityFloor {
			candidates = append(candidates, scored{record: cloneRecord(rec), similarity: sim})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.record)
	}
	return out
}

func (s *Store) Insights() Insights {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.records)
	if total == 0 {
		return Insights{}
	}

	var duration time.Duration
	strength := 0.0
	for _, rec := range s.records {
		duration += rec.Duration
		strength += rec.ResonanceStrength
	}

	return Insights{
		TotalSearches: total,
		AvgDuration:   (duration / time.Duration(total)).Round(time.Millisecond),
		AvgResonance:  int(math.Round(strength / float64(total) * 100)),
	}
}

// Export returns a snapshot of all records, oldest first.
func (s *Store) Export() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	return out
}

// Import appends records after the existing history, then enforces the
// capacity.
func (s *Store) Import(records []Record) {
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records = append(s.records, cloneRecord(rec))
	}
	s.evictLocked()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneRecord(rec Record) Record {
	rec.TopFindings = append([]string{}, rec.TopFindings...)
	return rec
}
