package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/types"
)

type TransactionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, transactionRow *types.Transaction) (*types.Transaction, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Transaction, error)
  GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Transaction, error)
}

type transactionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
  repoLog := baseLog.With("repo", "TransactionRepo")
  return &transactionRepo{db: db, log: repoLog}
}

func (tr *transactionRepo) Create(ctx context.Context, tx *gorm.DB, transactionRow *types.Transaction) (*types.Transaction, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  if transactionRow.ID == uuid.Nil {
    transactionRow.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(transactionRow).Error; err != nil {
    return nil, err
  }
  return transactionRow, nil
}

func (tr *transactionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Transaction, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Transaction
  if err := transaction.WithContext(ctx).
    Preload("Property").
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (tr *transactionRepo) GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Transaction, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Transaction
  if err := transaction.WithContext(ctx).
    Preload("Property").
    Where("user_id = ? AND status = ?", userID, types.TransactionCompleted).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
