// Package synthesis renders findings and their resonances into a
// deterministic plain-text digest.
package synthesis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	contractx "github.com/tanpawarit/symphony/agent/contract"
	"github.com/tanpawarit/symphony/agent/resonance"
)

const (
	EmptyMessage      = "No findings to synthesize."
	ContradictionNote = "These contradictions may represent different perspectives or evolving understanding."

	maxThemes      = 5
	minThemeLength = 4
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
}

var opposites = [][2]string{
	{"increase", "decrease"},
	{"positive", "negative"},
	{"success", "failure"},
	{"growth", "decline"},
}

// Synthesize builds the digest. Resonances are expected strongest first.
func Synthesize(findings []contractx.Finding, resonances []contractx.Resonance) string {
	if len(findings) == 0 {
		return EmptyMessage
	}

	contents := make([]string, 0, len(findings))
	for _, f := range findings {
		contents = append(contents, f.Content)
	}

	parts := []string{"Key themes: " + strings.Join(Themes(strings.Join(contents, "\n\n")), ", ")}

	if len(resonances) > 0 {
		strongest := resonances[0]
		parts = append(parts, fmt.Sprintf("\nStrongest convergence (%d%%): %s", percent(strongest.Strength), strongest.Pattern))
	}

	parts = append(parts, "\nSources consulted: "+strings.Join(resonance.UniqueSources(findings), ", "))
	parts = append(parts, fmt.Sprintf("\nAverage confidence: %d%%", percent(averageConfidence(findings))))

	if n := CountContradictions(findings); n > 0 {
		parts = append(parts, fmt.Sprintf("\nContradictions found: %d", n), ContradictionNote)
	}

	return strings.Join(parts, "\n")
}

// Themes returns up to five of the most frequent words in content, ties in
// first-seen order. Short words and stop words are ignored.
func Themes(content string) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range strings.Fields(strings.ToLower(content)) {
		if utf8.RuneCountInString(word) < minThemeLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxThemes {
		order = order[:maxThemes]
	}
	return order
}

// CountContradictions counts, for every unordered pair of findings, each
// opposite-word pair that splits across the two contents.
func CountContradictions(findings []contractx.Finding) int {
	count := 0
	for i := 0; i < len(findings); i++ {
		for j := i + 1; j < len(findings); j++ {
			a, b := findings[i].Content, findings[j].Content
			for _, pair := range opposites {
				if (strings.Contains(a, pair[0]) && strings.Contains(b, pair[1])) ||
					(strings.Contains(a, pair[1]) && strings.Contains(b, pair[0])) {
					count++
				}
			}
		}
	}
	return count
}

func averageConfidence(findings []contractx.Finding) float64 {
	if len(findings) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range findings {
		total += f.Confidence
	}
	return total / float64(len(findings))
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
