// Package narrator turns a finished symphony into a few sentences of prose
// with a chat model.
package narrator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/symphony/agent/contract"
	llmx "github.com/tanpawarit/symphony/agent/llm"
	promptx "github.com/tanpawarit/symphony/agent/prompt"
)

const (
	maxResonances = 3
	maxFindings   = 5
	previewRunes  = 280
)

type Narrator struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Narrator = (*Narrator)(nil)

// NewFromConfig builds the OpenRouter model described by cfg and wraps it.
func NewFromConfig(ctx context.Context, cfg llmx.Config) (*Narrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orCfg := cfg.OpenRouter()
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create narrator model: %v", contractx.ErrModelInvoke, err)
	}
	return New(ctx, chatModel, promptx.LoadPromptSet().Narrator)
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Narrator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is nil", contractx.ErrValidation)
	}

	runner, err := compileNarratorGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile narrator graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Narrator{runner: runner}, nil
}

func compileNarratorGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add narrator prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add narrator model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add narrator edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add narrator edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add narrator edge model->end: %w", err)
	}

	return graph.Compile(ctx, compose.WithGraphName("narrator.model_graph"))
}

func (n *Narrator) Narrate(ctx context.Context, req contractx.NarrationRequest) (string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", fmt.Errorf("%w: narration query is empty", contractx.ErrValidation)
	}

	msg, err := n.runner.Invoke(ctx, map[string]any{"input": BuildInput(req)})
	if err != nil {
		return "", fmt.Errorf("%w: narrate: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: narrator returned no message", contractx.ErrModelInvoke)
	}
	return strings.TrimSpace(msg.Content), nil
}

// BuildInput renders the user turn handed to the model.
func BuildInput(req contractx.NarrationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(req.Query))
	fmt.Fprintf(&b, "Digest:\n%s\n", strings.TrimSpace(req.Synthesis))

	if len(req.Resonances) > 0 {
		b.WriteString("\nAgreement between seekers:\n")
		for i, r := range req.Resonances {
			if i == maxResonances {
				break
			}
			fmt.Fprintf(&b, "- %s (%d%%)\n", r.Pattern, int(math.Round(r.Strength*100)))
		}
	}

	top := topFindings(req.Findings, maxFindings)
	if len(top) > 0 {
		b.WriteString("\nMost confident findings:\n")
		for _, f := range top {
			fmt.Fprintf(&b, "- [%s, %d%%] %s", f.Source, int(math.Round(f.Confidence*100)), clip(f.Content))
			if f.URL != "" {
				fmt.Fprintf(&b, " (%s)", f.URL)
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func topFindings(findings []contractx.Finding, n int) []contractx.Finding {
	sorted := append([]contractx.Finding(nil), findings...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Confidence > sorted[b].Confidence
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func clip(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	return string([]rune(content)[:previewRunes]) + "..."
}
