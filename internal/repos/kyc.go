package repos

import (
  "context"
  "errors"
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/types"
)

type KycProfileRepo interface {
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.KycProfile, error)
  GetByID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) (*types.KycProfile, error)
  Create(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.KycProfile, error)
  UpdateStatus(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, status types.OverallKycStatus, completedAt *time.Time) error
}

type kycProfileRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewKycProfileRepo(db *gorm.DB, baseLog *logger.Logger) KycProfileRepo {
  repoLog := baseLog.With("repo", "KycProfileRepo")
  return &kycProfileRepo{db: db, log: repoLog}
}

func (kpr *kycProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.KycProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = kpr.db
  }
  var result types.KycProfile
  if err := transaction.WithContext(ctx).
    Preload("Verifications").
    Where("user_id = ?", userID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (kpr *kycProfileRepo) GetByID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) (*types.KycProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = kpr.db
  }
  var result types.KycProfile
  if err := transaction.WithContext(ctx).Where("id = ?", profileID).First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (kpr *kycProfileRepo) Create(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.KycProfile, error) {
  transaction := tx
  if transaction == nil {
    transaction = kpr.db
  }
  profile := types.KycProfile{
    ID:            uuid.New(),
    UserID:        userID,
    OverallStatus: types.KycNotStarted,
  }
  if err := transaction.WithContext(ctx).Create(&profile).Error; err != nil {
    return nil, err
  }
  return &profile, nil
}

func (kpr *kycProfileRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, status types.OverallKycStatus, completedAt *time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = kpr.db
  }
  updates := map[string]any{"overall_status": status}
  if completedAt != nil {
    updates["completed_at"] = completedAt
  }
  return transaction.WithContext(ctx).
    Model(&types.KycProfile{}).
    Where("id = ?", profileID).
    Updates(updates).Error
}

type KycVerificationUpdate struct {
  Status          *types.VerificationStatus
  ProviderRefID   *string
  Metadata        datatypes.JSON
  FailureReason   *string
}

type KycVerificationRepo interface {
  Create(ctx context.Context, tx *gorm.DB, verification *types.KycVerification) (*types.KycVerification, error)
  Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, update KycVerificationUpdate) error
  FindByProviderRef(ctx context.Context, tx *gorm.DB, providerRefID string) (*types.KycVerification, error)
  GetByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) ([]*types.KycVerification, error)
}

type kycVerificationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewKycVerificationRepo(db *gorm.DB, baseLog *logger.Logger) KycVerificationRepo {
  repoLog := baseLog.With("repo", "KycVerificationRepo")
  return &kycVerificationRepo{db: db, log: repoLog}
}

func (kvr *kycVerificationRepo) Create(ctx context.Context, tx *gorm.DB, verification *types.KycVerification) (*types.KycVerification, error) {
  transaction := tx
  if transaction == nil {
    transaction = kvr.db
  }
  if verification.ID == uuid.Nil {
    verification.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(verification).Error; err != nil {
    return nil, err
  }
  return verification, nil
}

func (kvr *kycVerificationRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, update KycVerificationUpdate) error {
  transaction := tx
  if transaction == nil {
    transaction = kvr.db
  }
  updates := map[string]any{}
  if update.Status != nil {
    updates["status"] = *update.Status
  }
  if update.ProviderRefID != nil {
    updates["provider_ref_id"] = *update.ProviderRefID
  }
  if update.Metadata != nil {
    updates["metadata"] = update.Metadata
  }
  if update.FailureReason != nil {
    updates["failure_reason"] = *update.FailureReason
  }
  if len(updates) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.KycVerification{}).
    Where("id = ?", id).
    Updates(updates).Error
}

func (kvr *kycVerificationRepo) FindByProviderRef(ctx context.Context, tx *gorm.DB, providerRefID string) (*types.KycVerification, error) {
  transaction := tx
  if transaction == nil {
    transaction = kvr.db
  }
  var result types.KycVerification
  if err := transaction.WithContext(ctx).
    Where("provider_ref_id = ?", providerRefID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (kvr *kycVerificationRepo) GetByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) ([]*types.KycVerification, error) {
  transaction := tx
  if transaction == nil {
    transaction = kvr.db
  }
  var results []*types.KycVerification
  if err := transaction.WithContext(ctx).
    Where("profile_id = ?", profileID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
