package agents

import (
  "context"
  "github.com/google/uuid"
)

const (
  RoleSystem      = "system"
  RoleUser        = "user"
  RoleAssistant   = "assistant"
  RoleTool        = "tool"
)

// Message is one turn in a conversation as exchanged with the model.
// Tool invocations round-trip through ToolCalls (assistant side) and
// ToolCallID/Name (tool side).
type Message struct {
  Role          string          `json:"role"`
  Content       string          `json:"content"`
  Name          string          `json:"name,omitempty"`
  ToolCallID    string          `json:"tool_call_id,omitempty"`
  ToolCalls     []ToolCall      `json:"tool_calls,omitempty"`
}

type ToolCall struct {
  ID          string            `json:"id"`
  Name        string            `json:"name"`
  Arguments   map[string]any    `json:"arguments"`
}

type ToolSpec struct {
  Name          string            `json:"name"`
  Description   string            `json:"description"`
  Parameters    map[string]any    `json:"parameters"`
}

type Route string

const (
  RouteMarketScout        Route = "MarketScout"
  RoutePortfolioManager   Route = "PortfolioManager"
  RouteWealthAdvisor      Route = "WealthAdvisor"
  RoutePersonal           Route = "Personal"
)

// ChatState lives for one turn only. UserID comes from the
// authenticated request context and is never read from conversation
// text.
type ChatState struct {
  Messages    []Message
  Route       Route
  UserID      uuid.UUID
}

// LLMClient is the narrow surface the routing graph needs from the
// model provider. GenerateJSON must enforce the supplied schema on the
// provider side; ChatTools runs a chat completion with optional bound
// tools.
type LLMClient interface {
  GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
  ChatTools(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error)
}
