// Package resonance groups findings whose contents converge on the same
// wording.
package resonance

import (
	"sort"
	"strings"

	contractx "github.com/tanpawarit/symphony/agent/contract"
)

// WordSet lowercases text and splits it on whitespace.
func WordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Similarity is the Jaccard index of the word sets of a and b. Two texts
// without any words have similarity 0.
func Similarity(a, b string) float64 {
	return jaccard(WordSet(a), WordSet(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Detect clusters findings greedily. Each unassigned finding seeds a group
// and pulls in every later unassigned finding whose similarity to the seed
// is >= threshold. Members are compared with the seed only, never with each
// other. Groups without a partner are dropped.
func Detect(findings []contractx.Finding, threshold float64) []contractx.Resonance {
	resonances := make([]contractx.Resonance, 0)
	if len(findings) == 0 {
		return resonances
	}

	sets := make([]map[string]struct{}, len(findings))
	for i, f := range findings {
		sets[i] = WordSet(f.Content)
	}

	used := make([]bool, len(findings))
	for i := range findings {
		if used[i] {
			continue
		}
		used[i] = true
		group := []contractx.Finding{findings[i]}

		for j := i + 1; j < len(findings); j++ {
			if used[j] {
				continue
			}
			if jaccard(sets[i], sets[j]) >= threshold {
				group = append(group, findings[j])
				used[j] = true
			}
		}

		if len(group) > 1 {
			resonances = append(resonances, newResonance(group))
		}
	}

	sort.SliceStable(resonances, func(a, b int) bool {
		return resonances[a].Strength > resonances[b].Strength
	})
	return resonances
}

func newResonance(group []contractx.Finding) contractx.Resonance {
	total := 0.0
	for _, f := range group {
		total += f.Confidence
	}
	return contractx.Resonance{
		Findings: group,
		Strength: total / float64(len(group)),
		Pattern:  "Convergence from " + strings.Join(UniqueSources(group), " + "),
	}
}

// UniqueSources returns the distinct finding sources in first-seen order.
func UniqueSources(findings []contractx.Finding) []string {
	seen := make(map[string]struct{}, len(findings))
	sources := make([]string, 0, len(findings))
	for _, f := range findings {
		if _, ok := seen[f.Source]; ok {
			continue
		}
		seen[f.Source] = struct{}{}
		sources = append(sources, f.Source)
	}
	return sources
}
