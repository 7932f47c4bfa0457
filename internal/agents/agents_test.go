package agents

import (
  "context"
  "strings"
  "testing"

  "github.com/google/uuid"

  "github.com/realblock/realblock-backend/internal/types"
)

func runGraph(t *testing.T, deps Deps, state *ChatState) []StepOutput {
  t.Helper()
  var outputs []StepOutput
  err := NewGraph(deps).Run(context.Background(), state, func(step StepOutput) error {
    outputs = append(outputs, step)
    return nil
  })
  if err != nil {
    t.Fatalf("graph run failed: %v", err)
  }
  return outputs
}

func TestGraphRun_PersonalRouteRefusesWithoutModelCall(t *testing.T) {
  ai := routeStub("Personal")
  deps, _ := newTestDeps(t)
  deps.AI = ai

  state := &ChatState{
    Messages: []Message{{Role: RoleUser, Content: "what is my girlfriend's name"}},
    UserID:   uuid.New(),
  }
  outputs := runGraph(t, deps, state)

  if len(outputs) != 1 {
    t.Fatalf("expected exactly one emitted step, got %d", len(outputs))
  }
  if outputs[0].Content != personalRefusalMessage {
    t.Fatalf("expected canned refusal, got %q", outputs[0].Content)
  }
  if ai.chatCalls != 0 {
    t.Fatalf("personal route must not call the model, saw %d chat calls", ai.chatCalls)
  }
}

func TestGraphRun_WealthAdvisorGetsNoTools(t *testing.T) {
  ai := routeStub("WealthAdvisor")
  ai.chatToolsFn = func(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
    if len(tools) != 0 {
      t.Fatalf("advisor node must not expose tools, got %d", len(tools))
    }
    return Message{Role: RoleAssistant, Content: "REITs are one option."}, nil
  }
  deps, _ := newTestDeps(t)
  deps.AI = ai

  state := &ChatState{
    Messages: []Message{{Role: RoleUser, Content: "how should I diversify"}},
    UserID:   uuid.New(),
  }
  outputs := runGraph(t, deps, state)
  if len(outputs) != 1 || outputs[0].Content != "REITs are one option." {
    t.Fatalf("unexpected outputs: %v", outputs)
  }
  if ai.chatCalls != 1 {
    t.Fatalf("expected a single model call, got %d", ai.chatCalls)
  }
}

func TestGraphRun_MarketScoutToolResultFeedsSecondCall(t *testing.T) {
  deps, gdb := newTestDeps(t)
  seedProperty(t, gdb, "Prestige Tech Park", "Bangalore", types.PropertyCommercial, "Grade A office space")

  var toolContent string
  ai := routeStub("MarketScout")
  ai.chatToolsFn = func(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
    if len(tools) > 0 {
      return Message{
        Role: RoleAssistant,
        ToolCalls: []ToolCall{{
          ID:        "call_1",
          Name:      "search_properties",
          Arguments: map[string]any{"location": "Bangalore"},
        }},
      }, nil
    }
    last := messages[len(messages)-1]
    if last.Role != RoleTool || last.ToolCallID != "call_1" {
      t.Fatalf("second call must carry the tool result, got role=%q id=%q", last.Role, last.ToolCallID)
    }
    toolContent = last.Content
    return Message{Role: RoleAssistant, Content: "Here is what I found."}, nil
  }
  deps.AI = ai

  state := &ChatState{
    Messages: []Message{{Role: RoleUser, Content: "show me properties in Bangalore"}},
    UserID:   uuid.New(),
  }
  outputs := runGraph(t, deps, state)

  if len(outputs) != 1 || outputs[0].Content != "Here is what I found." {
    t.Fatalf("raw tool output must never be the emitted message, got %v", outputs)
  }
  if !strings.Contains(toolContent, "Prestige Tech Park") {
    t.Fatalf("tool result should contain seeded property, got %q", toolContent)
  }
  if ai.chatCalls != 2 {
    t.Fatalf("expected two model calls, got %d", ai.chatCalls)
  }
}

func TestGraphRun_PortfolioIgnoresModelSuppliedUserID(t *testing.T) {
  deps, gdb := newTestDeps(t)
  realUser := uuid.New()
  attacker := uuid.New()
  if err := gdb.Create(&types.Wallet{ID: uuid.New(), UserID: realUser, Balance: 7777, Currency: "INR"}).Error; err != nil {
    t.Fatalf("failed to seed wallet: %v", err)
  }
  if err := gdb.Create(&types.Wallet{ID: uuid.New(), UserID: attacker, Balance: 1, Currency: "INR"}).Error; err != nil {
    t.Fatalf("failed to seed wallet: %v", err)
  }

  var toolContent string
  ai := routeStub("PortfolioManager")
  ai.chatToolsFn = func(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
    if len(tools) > 0 {
      return Message{
        Role: RoleAssistant,
        ToolCalls: []ToolCall{{
          ID:   "call_1",
          Name: "get_portfolio_stats",
          // Model attempts to read someone else's portfolio.
          Arguments: map[string]any{"userId": attacker.String()},
        }},
      }, nil
    }
    toolContent = messages[len(messages)-1].Content
    return Message{Role: RoleAssistant, Content: "Your portfolio summary."}, nil
  }
  deps.AI = ai

  state := &ChatState{
    Messages: []Message{{Role: RoleUser, Content: "how are my investments doing"}},
    UserID:   realUser,
  }
  runGraph(t, deps, state)

  if !strings.Contains(toolContent, "7777") {
    t.Fatalf("tool must use the context user's wallet, got %q", toolContent)
  }
}

func TestGraphRun_RouterErrorAborts(t *testing.T) {
  ai := routeStub("Oracle")
  deps, _ := newTestDeps(t)
  deps.AI = ai

  state := &ChatState{
    Messages: []Message{{Role: RoleUser, Content: "hello"}},
    UserID:   uuid.New(),
  }
  err := NewGraph(deps).Run(context.Background(), state, nil)
  if err == nil {
    t.Fatalf("expected error from unknown route")
  }
}
