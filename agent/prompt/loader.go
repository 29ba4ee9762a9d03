package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/narrator.txt
	narratorRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Narrator string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Narrator: strings.TrimSpace(narratorRaw),
	}
}
