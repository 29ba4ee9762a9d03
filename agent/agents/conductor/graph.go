package conductor

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/symphony/agent/contract"
	nodex "github.com/tanpawarit/symphony/agent/nodes/conductor"
)

func (c *Conductor) compilePerformGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, *contractx.Symphony], error) {
	graph := compose.NewGraph[nodex.GraphInput, *contractx.Symphony]()

	if err := graph.AddLambdaNode("prepare_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.PrepareRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node prepare_request: %w", err)
	}

	if err := graph.AddLambdaNode("gather_findings",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GatherFindings(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node gather_findings: %w", err)
	}

	if err := graph.AddLambdaNode("detect_resonances",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DetectResonances(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node detect_resonances: %w", err)
	}

	if err := graph.AddLambdaNode("synthesize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Synthesize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node synthesize: %w", err)
	}

	if err := graph.AddLambdaNode("narrate",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Narrate(ctx, in, c.narrator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node narrate: %w", err)
	}

	if err := graph.AddLambdaNode("assemble_symphony",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*contractx.Symphony, error) {
			return nodex.AssembleSymphony(in, c.now, c.newID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node assemble_symphony: %w", err)
	}

	edges := [][2]string{
		{compose.START, "prepare_request"},
		{"prepare_request", "gather_findings"},
		{"gather_findings", "detect_resonances"},
		{"detect_resonances", "synthesize"},
		{"synthesize", "narrate"},
		{"narrate", "assemble_symphony"},
		{"assemble_symphony", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("conductor.perform"))
	if err != nil {
		return nil, fmt.Errorf("compile conductor graph: %w", err)
	}
	return runner, nil
}
