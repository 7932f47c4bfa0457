package agents

import (
  "context"
  "fmt"
)

// The routing graph is exactly one hop deep: Supervisor classifies,
// one specialist acts, the turn ends. A step ceiling guards against
// that shape ever regressing into a loop.
const maxGraphSteps = 10

type StepOutput struct {
  Node      Route
  Content   string
}

type nodeFunc func(ctx context.Context, deps Deps, state *ChatState) (Message, error)

type Graph struct {
  deps    Deps
  nodes   map[Route]nodeFunc
}

func NewGraph(deps Deps) *Graph {
  return &Graph{
    deps: deps,
    nodes: map[Route]nodeFunc{
      RouteMarketScout:      marketScoutNode,
      RoutePortfolioManager: portfolioManagerNode,
      RouteWealthAdvisor:    wealthAdvisorNode,
      RoutePersonal:         personalRefusalNode,
    },
  }
}

// Run drives one conversation turn. emit is called once per specialist
// step that produced output, in execution order; the caller decides
// how to deliver it (the chat handler streams each call as one SSE
// frame).
func (g *Graph) Run(ctx context.Context, state *ChatState, emit func(StepOutput) error) error {
  routed := false

  for step := 0; step < maxGraphSteps; step++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }

    if !routed {
      route, err := RouteMessage(ctx, g.deps.AI, lastUserMessage(state).Content)
      if err != nil {
        return err
      }
      state.Route = route
      routed = true
      continue
    }

    node, ok := g.nodes[state.Route]
    if !ok {
      return fmt.Errorf("no node registered for route %q", state.Route)
    }

    response, err := node(ctx, g.deps, state)
    if err != nil {
      return err
    }
    state.Messages = append(state.Messages, response)

    if response.Content != "" && emit != nil {
      if err := emit(StepOutput{Node: state.Route, Content: response.Content}); err != nil {
        return err
      }
    }
    return nil
  }

  return fmt.Errorf("graph exceeded %d steps without terminating", maxGraphSteps)
}
