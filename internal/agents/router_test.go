package agents

import (
  "context"
  "errors"
  "testing"
)

type stubLLM struct {
  generateJSONFn   func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
  chatToolsFn      func(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error)
  chatCalls        int
}

func (s *stubLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
  if s.generateJSONFn == nil {
    return nil, errors.New("GenerateJSON not stubbed")
  }
  return s.generateJSONFn(ctx, system, user, schemaName, schema)
}

func (s *stubLLM) ChatTools(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
  s.chatCalls++
  if s.chatToolsFn == nil {
    return Message{}, errors.New("ChatTools not stubbed")
  }
  return s.chatToolsFn(ctx, messages, tools)
}

func routeStub(next string) *stubLLM {
  return &stubLLM{
    generateJSONFn: func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
      return map[string]any{"next": next}, nil
    },
  }
}

func TestRouteMessage_ReturnsClassifiedRoute(t *testing.T) {
  cases := []struct {
    next     string
    expected Route
  }{
    {"MarketScout", RouteMarketScout},
    {"PortfolioManager", RoutePortfolioManager},
    {"WealthAdvisor", RouteWealthAdvisor},
    {"Personal", RoutePersonal},
  }
  for _, tc := range cases {
    route, err := RouteMessage(context.Background(), routeStub(tc.next), "hello")
    if err != nil {
      t.Fatalf("unexpected error for %q: %v", tc.next, err)
    }
    if route != tc.expected {
      t.Fatalf("expected route %q got %q", tc.expected, route)
    }
  }
}

func TestRouteMessage_UnknownRouteFails(t *testing.T) {
  _, err := RouteMessage(context.Background(), routeStub("Astrologer"), "hello")
  if err == nil {
    t.Fatalf("expected error for unknown route")
  }
}

func TestRouteMessage_EmptyRouteFails(t *testing.T) {
  _, err := RouteMessage(context.Background(), routeStub(""), "hello")
  if err == nil {
    t.Fatalf("expected error for empty route")
  }
}

func TestRouteMessage_PropagatesClientError(t *testing.T) {
  ai := &stubLLM{
    generateJSONFn: func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
      return nil, errors.New("upstream down")
    },
  }
  _, err := RouteMessage(context.Background(), ai, "hello")
  if err == nil {
    t.Fatalf("expected error when classification call fails")
  }
}

func TestRouteMessage_SchemaIsClosedEnum(t *testing.T) {
  var captured map[string]any
  ai := &stubLLM{
    generateJSONFn: func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
      captured = schema
      return map[string]any{"next": "Personal"}, nil
    },
  }
  if _, err := RouteMessage(context.Background(), ai, "what is my cat's name"); err != nil {
    t.Fatalf("unexpected error: %v", err)
  }
  props, _ := captured["properties"].(map[string]any)
  next, _ := props["next"].(map[string]any)
  enum, _ := next["enum"].([]any)
  if len(enum) != 4 {
    t.Fatalf("expected 4 route labels in enum, got %d", len(enum))
  }
}
