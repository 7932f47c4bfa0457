package services

import (
  "context"
  "errors"
  "net/http"

  "github.com/google/uuid"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

type DashboardStats struct {
  TotalInvestment   float64               `json:"total_investment"`
  PropertiesCount   int                   `json:"properties_count"`
  WalletBalance     float64               `json:"wallet_balance"`
  IsKycVerified     bool                  `json:"is_kyc_verified"`
  Transactions      []*types.Transaction  `json:"transactions"`
}

type UserService interface {
  GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
  GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
}

type userService struct {
  log            *logger.Logger
  users          repos.UserRepo
  transactions   repos.TransactionRepo
  wallets        repos.WalletRepo
}

func NewUserService(
  users repos.UserRepo,
  transactions repos.TransactionRepo,
  wallets repos.WalletRepo,
  baseLog *logger.Logger,
) UserService {
  return &userService{
    log:          baseLog.With("service", "UserService"),
    users:        users,
    transactions: transactions,
    wallets:      wallets,
  }
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
  user, err := us.users.GetByID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if user == nil {
    return nil, apierr.New(http.StatusNotFound, "USER_NOT_FOUND", errors.New("user not found"))
  }
  return user, nil
}

func (us *userService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
  user, err := us.users.GetByID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if user == nil {
    return nil, apierr.New(http.StatusNotFound, "USER_NOT_FOUND", errors.New("user not found"))
  }

  investments, err := us.transactions.GetCompletedByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }

  totalInvestment := 0.0
  propertyIDs := map[uuid.UUID]bool{}
  for _, tx := range investments {
    totalInvestment += tx.Amount
    propertyIDs[tx.PropertyID] = true
  }

  // The denormalized column drifts if a purchase write races a
  // dashboard read; recompute from the ledger and heal it here.
  if totalInvestment != user.TotalInvestment {
    if err := us.users.UpdateTotalInvestment(ctx, nil, userID, totalInvestment); err != nil {
      us.log.Warn("Failed to sync total investment", "user_id", userID, "error", err)
    }
  }

  walletBalance := 0.0
  wallet, err := us.wallets.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if wallet != nil {
    walletBalance = wallet.Balance
  }

  return &DashboardStats{
    TotalInvestment: totalInvestment,
    PropertiesCount: len(propertyIDs),
    WalletBalance:   walletBalance,
    IsKycVerified:   user.IsKycVerified,
    Transactions:    investments,
  }, nil
}
