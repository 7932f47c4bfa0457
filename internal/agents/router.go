package agents

import (
  "context"
  "fmt"
  "strings"
)

// RouteMessage classifies the latest user message into exactly one
// specialist. The schema constrains the model to the closed route
// enum; anything that does not decode to one of the four labels is an
// error, never a guessed default.
func RouteMessage(ctx context.Context, ai LLMClient, message string) (Route, error) {
  schema := map[string]any{
    "type":                 "object",
    "additionalProperties": false,
    "properties": map[string]any{
      "next": map[string]any{
        "type": "string",
        "enum": []any{
          string(RouteMarketScout),
          string(RoutePortfolioManager),
          string(RouteWealthAdvisor),
          string(RoutePersonal),
        },
      },
    },
    "required": []any{"next"},
  }

  obj, err := ai.GenerateJSON(ctx, supervisorSystemPrompt, message, "supervisor_route_v1", schema)
  if err != nil {
    return "", fmt.Errorf("supervisor classification failed: %w", err)
  }

  next, _ := obj["next"].(string)
  switch Route(strings.TrimSpace(next)) {
  case RouteMarketScout:
    return RouteMarketScout, nil
  case RoutePortfolioManager:
    return RoutePortfolioManager, nil
  case RouteWealthAdvisor:
    return RouteWealthAdvisor, nil
  case RoutePersonal:
    return RoutePersonal, nil
  default:
    return "", fmt.Errorf("supervisor returned unknown route %q", next)
  }
}
