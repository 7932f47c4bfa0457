package agents

import (
  "context"
  "encoding/json"
  "fmt"
  "math"
  "github.com/google/uuid"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
)

const (
  toolSearchProperties    = "search_properties"
  toolGetPortfolioStats   = "get_portfolio_stats"
)

// Deps is everything the graph nodes and tool handlers need. The
// repos are read-only from the graph's perspective.
type Deps struct {
  AI              LLMClient
  Properties      repos.PropertyRepo
  Transactions    repos.TransactionRepo
  Wallets         repos.WalletRepo
  Log             *logger.Logger
}

func searchPropertiesSpec() ToolSpec {
  return ToolSpec{
    Name:        toolSearchProperties,
    Description: "Search for properties in the marketplace. Use this to find commercial, residential, or holiday homes.",
    Parameters: map[string]any{
      "type": "object",
      "properties": map[string]any{
        "query":    map[string]any{"type": "string", "description": "General search term provided by user"},
        "type":     map[string]any{"type": "string", "description": "Type of property e.g., 'Commercial', 'Residential', 'Holiday Home'"},
        "location": map[string]any{"type": "string", "description": "Location or city name e.g., 'Mumbai', 'Bangalore'"},
      },
    },
  }
}

func getPortfolioStatsSpec() ToolSpec {
  return ToolSpec{
    Name:        toolGetPortfolioStats,
    Description: "Get the current user's portfolio statistics, investments, and wallet details. Requires User ID.",
    Parameters: map[string]any{
      "type": "object",
      "properties": map[string]any{
        "userId": map[string]any{"type": "string", "description": "User ID to fetch portfolio for"},
      },
      "required": []any{"userId"},
    },
  }
}

type propertyCard struct {
  ID              uuid.UUID     `json:"id"`
  Name            string        `json:"name"`
  Location        string        `json:"location"`
  Type            string        `json:"type"`
  PricePerSqft    float64       `json:"pricePerSqft"`
  Yield           float64       `json:"yield"`
  IRR             float64       `json:"irr"`
  MinInvestment   float64       `json:"minInvestment"`
  AssetValue      float64       `json:"assetValue"`
  Image           string        `json:"image"`
}

// Tool failures are swallowed into the returned text so the model can
// verbalize them; the caller never sees an error from a tool.
func runSearchProperties(ctx context.Context, deps Deps, args map[string]any) string {
  filter := repos.PropertySearchFilter{
    Query:    stringArg(args, "query"),
    Type:     stringArg(args, "type"),
    Location: stringArg(args, "location"),
  }
  if deps.Log != nil {
    deps.Log.Debug("Searching properties", "query", filter.Query, "type", filter.Type, "location", filter.Location)
  }

  properties, err := deps.Properties.Search(ctx, nil, filter, 5)
  if err != nil {
    if deps.Log != nil {
      deps.Log.Error("Error searching properties", "error", err)
    }
    return "Error occurred while searching for properties."
  }
  if len(properties) == 0 {
    return "No properties found matching your criteria."
  }

  cards := make([]propertyCard, 0, len(properties))
  for _, p := range properties {
    cards = append(cards, propertyCard{
      ID:            p.ID,
      Name:          p.Name,
      Location:      p.Location,
      Type:          string(p.Type),
      PricePerSqft:  p.PricePerSqft,
      Yield:         p.Yield,
      IRR:           p.IRR,
      MinInvestment: p.MinInvestment,
      AssetValue:    p.AssetValue,
      Image:         p.Image,
    })
  }
  b, err := json.Marshal(cards)
  if err != nil {
    return "Error occurred while searching for properties."
  }
  return string(b)
}

type portfolioRecentTx struct {
  Date        string        `json:"date"`
  Property    string        `json:"property"`
  Amount      float64       `json:"amount"`
  Sqft        float64       `json:"sqft"`
}

type portfolioStats struct {
  TotalInvestment         float64               `json:"totalInvestment"`
  PropertiesCount         int                   `json:"propertiesCount"`
  WalletBalance           float64               `json:"walletBalance"`
  NextPayoutDate          string                `json:"nextPayoutDate,omitempty"`
  EstimatedMonthlyPayout  float64               `json:"estimatedMonthlyPayout,omitempty"`
  Currency                string                `json:"currency,omitempty"`
  RecentTransactions      []portfolioRecentTx   `json:"recentTransactions,omitempty"`
  Message                 string                `json:"message,omitempty"`
}

// The userID always comes from the request context; whatever the model
// put in the tool-call arguments is ignored.
func runGetPortfolioStats(ctx context.Context, deps Deps, userID uuid.UUID) string {
  if userID == uuid.Nil {
    return "User ID is missing. Cannot fetch portfolio."
  }

  investments, err := deps.Transactions.GetCompletedByUserID(ctx, nil, userID)
  if err != nil {
    if deps.Log != nil {
      deps.Log.Error("Error fetching portfolio", "error", err)
    }
    return "Error fetching portfolio data."
  }

  wallet, err := deps.Wallets.GetByUserID(ctx, nil, userID)
  if err != nil {
    if deps.Log != nil {
      deps.Log.Error("Error fetching wallet", "error", err)
    }
    return "Error fetching portfolio data."
  }
  walletBalance := 0.0
  if wallet != nil {
    walletBalance = wallet.Balance
  }

  if len(investments) == 0 {
    b, _ := json.Marshal(portfolioStats{
      TotalInvestment: 0,
      PropertiesCount: 0,
      WalletBalance:   walletBalance,
      Message:         "No active investments found.",
    })
    return string(b)
  }

  totalInvestment := 0.0
  propertyIDs := map[uuid.UUID]bool{}
  for _, tx := range investments {
    totalInvestment += tx.Amount
    propertyIDs[tx.PropertyID] = true
  }

  // Placeholder payout estimate: flat 8% annual yield / 12. Real
  // payouts would come from a dividend ledger.
  estimatedMonthlyPayout := math.Floor((totalInvestment * 0.08) / 12)

  recent := make([]portfolioRecentTx, 0, 3)
  for i, tx := range investments {
    if i >= 3 {
      break
    }
    propertyName := ""
    if tx.Property != nil {
      propertyName = tx.Property.Name
    }
    recent = append(recent, portfolioRecentTx{
      Date:     tx.CreatedAt.Format("2006-01-02"),
      Property: propertyName,
      Amount:   tx.Amount,
      Sqft:     tx.Sqft,
    })
  }

  b, err := json.Marshal(portfolioStats{
    TotalInvestment:        totalInvestment,
    PropertiesCount:        len(propertyIDs),
    WalletBalance:          walletBalance,
    NextPayoutDate:         "Nov 01",
    EstimatedMonthlyPayout: estimatedMonthlyPayout,
    Currency:               "INR",
    RecentTransactions:     recent,
  })
  if err != nil {
    return "Error fetching portfolio data."
  }
  return string(b)
}

func stringArg(args map[string]any, key string) string {
  if args == nil {
    return ""
  }
  if v, ok := args[key].(string); ok {
    return v
  }
  if v, ok := args[key]; ok && v != nil {
    return fmt.Sprint(v)
  }
  return ""
}
