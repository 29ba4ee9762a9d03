package seeker

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/symphony/agent/contract"
)

// Profiles lists every search profile in registration order. The source
// seeker is listed through SourceProfile even though it also crawls.
func Profiles() []Profile {
	return []Profile{
		TruthProfile,
		ScholarProfile,
		CommerceProfile,
		SourceProfile,
		RivalProfile,
		NetworkProfile,
		LoreProfile,
	}
}

func New(name string, client Searcher, opts ...Option) (contractx.Seeker, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: searcher is nil", contractx.ErrValidation)
	}

	name = strings.TrimSpace(name)
	if name == contractx.SeekerSource {
		return newSourceSeeker(client, opts...), nil
	}
	for _, p := range Profiles() {
		if p.Name == name {
			return newExaSeeker(p, client, opts...), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown seeker %q", contractx.ErrValidation, name)
}

// NewDefaultSet builds the seven standard seekers in registration order.
func NewDefaultSet(client Searcher, opts ...Option) ([]contractx.Seeker, error) {
	profiles := Profiles()
	seekers := make([]contractx.Seeker, 0, len(profiles))
	for _, p := range profiles {
		s, err := New(p.Name, client, opts...)
		if err != nil {
			return nil, err
		}
		seekers = append(seekers, s)
	}
	return seekers, nil
}

// Describe returns the human readable description of a standard seeker.
func Describe(name string) string {
	for _, p := range Profiles() {
		if p.Name == name {
			return p.Description
		}
	}
	return ""
}
