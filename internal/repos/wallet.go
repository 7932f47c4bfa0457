package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/types"
)

type WalletRepo interface {
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Wallet, error)
  Create(ctx context.Context, tx *gorm.DB, wallet *types.Wallet) (*types.Wallet, error)
  UpdateBalance(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, balance float64) error
  CreateTransaction(ctx context.Context, tx *gorm.DB, walletTx *types.WalletTransaction) (*types.WalletTransaction, error)
}

type walletRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewWalletRepo(db *gorm.DB, baseLog *logger.Logger) WalletRepo {
  repoLog := baseLog.With("repo", "WalletRepo")
  return &walletRepo{db: db, log: repoLog}
}

func (wr *walletRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Wallet, error) {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  var result types.Wallet
  if err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (wr *walletRepo) Create(ctx context.Context, tx *gorm.DB, wallet *types.Wallet) (*types.Wallet, error) {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  if wallet.ID == uuid.Nil {
    wallet.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(wallet).Error; err != nil {
    return nil, err
  }
  return wallet, nil
}

func (wr *walletRepo) UpdateBalance(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, balance float64) error {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Wallet{}).
    Where("id = ?", walletID).
    Update("balance", balance).Error
}

func (wr *walletRepo) CreateTransaction(ctx context.Context, tx *gorm.DB, walletTx *types.WalletTransaction) (*types.WalletTransaction, error) {
  transaction := tx
  if transaction == nil {
    transaction = wr.db
  }
  if walletTx.ID == uuid.Nil {
    walletTx.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(walletTx).Error; err != nil {
    return nil, err
  }
  return walletTx, nil
}
