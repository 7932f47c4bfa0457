package agents

import (
  "context"
  "fmt"
)

// Each specialist node is terminal: it produces the turn's final
// assistant message and the graph ends. The two tool-bearing agents
// follow the same shape: first model call may emit a tool call; if so
// the tool runs once, its output goes back to the model, and only the
// second response is returned. Raw tool output is never the final
// message.

func lastUserMessage(state *ChatState) Message {
  for i := len(state.Messages) - 1; i >= 0; i-- {
    if state.Messages[i].Role == RoleUser {
      return state.Messages[i]
    }
  }
  return Message{Role: RoleUser}
}

func marketScoutNode(ctx context.Context, deps Deps, state *ChatState) (Message, error) {
  userMsg := lastUserMessage(state)
  systemMsg := Message{Role: RoleSystem, Content: marketAgentSystemPrompt}

  response, err := deps.AI.ChatTools(ctx, []Message{systemMsg, userMsg}, []ToolSpec{searchPropertiesSpec()})
  if err != nil {
    return Message{}, fmt.Errorf("market scout call failed: %w", err)
  }

  if len(response.ToolCalls) > 0 && response.ToolCalls[0].Name == toolSearchProperties {
    toolCall := response.ToolCalls[0]
    toolResult := runSearchProperties(ctx, deps, toolCall.Arguments)

    toolMsg := Message{
      Role:       RoleTool,
      ToolCallID: toolCall.ID,
      Name:       toolCall.Name,
      Content:    toolResult,
    }
    final, err := deps.AI.ChatTools(ctx, []Message{systemMsg, userMsg, response, toolMsg}, nil)
    if err != nil {
      return Message{}, fmt.Errorf("market scout follow-up failed: %w", err)
    }
    return final, nil
  }

  return response, nil
}

func portfolioManagerNode(ctx context.Context, deps Deps, state *ChatState) (Message, error) {
  userMsg := lastUserMessage(state)
  systemMsg := Message{
    Role:    RoleSystem,
    Content: portfolioAgentSystemPrompt + fmt.Sprintf("\n\nCurrent User ID provided by system: %s", state.UserID),
  }

  response, err := deps.AI.ChatTools(ctx, []Message{systemMsg, userMsg}, []ToolSpec{getPortfolioStatsSpec()})
  if err != nil {
    return Message{}, fmt.Errorf("portfolio manager call failed: %w", err)
  }

  if len(response.ToolCalls) > 0 && response.ToolCalls[0].Name == toolGetPortfolioStats {
    toolCall := response.ToolCalls[0]
    // The context userID always wins over whatever the model put in
    // the arguments.
    toolResult := runGetPortfolioStats(ctx, deps, state.UserID)

    toolMsg := Message{
      Role:       RoleTool,
      ToolCallID: toolCall.ID,
      Name:       toolCall.Name,
      Content:    toolResult,
    }
    final, err := deps.AI.ChatTools(ctx, []Message{systemMsg, userMsg, response, toolMsg}, nil)
    if err != nil {
      return Message{}, fmt.Errorf("portfolio manager follow-up failed: %w", err)
    }
    return final, nil
  }

  return response, nil
}

func wealthAdvisorNode(ctx context.Context, deps Deps, state *ChatState) (Message, error) {
  userMsg := lastUserMessage(state)
  systemMsg := Message{Role: RoleSystem, Content: advisorAgentSystemPrompt}

  response, err := deps.AI.ChatTools(ctx, []Message{systemMsg, userMsg}, nil)
  if err != nil {
    return Message{}, fmt.Errorf("wealth advisor call failed: %w", err)
  }
  return response, nil
}

// No model call; deterministic canned refusal.
func personalRefusalNode(ctx context.Context, deps Deps, state *ChatState) (Message, error) {
  return Message{Role: RoleAssistant, Content: personalRefusalMessage}, nil
}
