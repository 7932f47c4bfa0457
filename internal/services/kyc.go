package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "net/http"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

type KycStatusResult struct {
  OverallStatus   types.OverallKycStatus      `json:"overall_status"`
  CompletedAt     *time.Time                  `json:"completed_at,omitempty"`
  Verifications   []*types.KycVerification    `json:"verifications"`
}

type KycService interface {
  VerifyPan(ctx context.Context, userID uuid.UUID, pan string, name string) (*types.KycVerification, error)
  InitiateAadhaar(ctx context.Context, userID uuid.UUID, aadhaarNumber string) (*types.KycVerification, error)
  ConfirmAadhaar(ctx context.Context, userID uuid.UUID, otp string, refID string) (*types.KycVerification, error)
  VerifyBank(ctx context.Context, userID uuid.UUID, accountNumber string, ifsc string, accountHolderName string) (*types.KycVerification, error)
  GetStatus(ctx context.Context, userID uuid.UUID) (*KycStatusResult, error)
  CheckAndCompleteKyc(ctx context.Context, profileID uuid.UUID) error
}

type kycService struct {
  log             *logger.Logger
  provider        KycProvider
  users           repos.UserRepo
  profiles        repos.KycProfileRepo
  verifications   repos.KycVerificationRepo
}

func NewKycService(
  provider KycProvider,
  users repos.UserRepo,
  profiles repos.KycProfileRepo,
  verifications repos.KycVerificationRepo,
  baseLog *logger.Logger,
) KycService {
  return &kycService{
    log:           baseLog.With("service", "KycService"),
    provider:      provider,
    users:         users,
    profiles:      profiles,
    verifications: verifications,
  }
}

// ensureProfile returns the user's profile, creating it on first use.
func (ks *kycService) ensureProfile(ctx context.Context, userID uuid.UUID) (*types.KycProfile, error) {
  profile, err := ks.profiles.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if profile != nil {
    return profile, nil
  }
  return ks.profiles.Create(ctx, nil, userID)
}

func hasVerifiedOfType(verifications []types.KycVerification, vType types.VerificationType) bool {
  for _, v := range verifications {
    if v.Type == vType && v.Status == types.VerificationVerified {
      return true
    }
  }
  return false
}

// providerSaysVerified interprets the vendor's success signaling,
// which differs per product: a boolean "valid", or a "status" of
// VALID/SUCCESS.
func providerSaysVerified(resp map[string]any) bool {
  if valid, ok := resp["valid"].(bool); ok && valid {
    return true
  }
  status, _ := resp["status"].(string)
  switch strings.ToUpper(status) {
  case "VALID", "SUCCESS":
    return true
  }
  return false
}

func metadataJSON(resp map[string]any) datatypes.JSON {
  b, err := json.Marshal(resp)
  if err != nil {
    return datatypes.JSON([]byte("{}"))
  }
  return datatypes.JSON(b)
}

func strPtr(s string) *string { return &s }

func statusPtr(s types.VerificationStatus) *types.VerificationStatus { return &s }

// failVerification records a provider failure; the original provider
// error is still returned to the caller.
func (ks *kycService) failVerification(ctx context.Context, id uuid.UUID, reason string) {
  if err := ks.verifications.Update(ctx, nil, id, repos.KycVerificationUpdate{
    Status:        statusPtr(types.VerificationFailed),
    FailureReason: strPtr(reason),
  }); err != nil {
    ks.log.Error("Failed to mark verification FAILED", "verification_id", id, "error", err)
  }
}

func (ks *kycService) VerifyPan(ctx context.Context, userID uuid.UUID, pan string, name string) (*types.KycVerification, error) {
  profile, err := ks.ensureProfile(ctx, userID)
  if err != nil {
    return nil, err
  }
  if hasVerifiedOfType(profile.Verifications, types.VerificationPan) {
    return nil, apierr.New(http.StatusBadRequest, "PAN_ALREADY_VERIFIED", errors.New("PAN is already verified for this user"))
  }

  verification, err := ks.verifications.Create(ctx, nil, &types.KycVerification{
    UserID:    userID,
    ProfileID: profile.ID,
    Type:      types.VerificationPan,
    Status:    types.VerificationInitiated,
  })
  if err != nil {
    return nil, err
  }

  resp, err := ks.provider.VerifyPan(ctx, pan, name)
  if err != nil {
    ks.failVerification(ctx, verification.ID, err.Error())
    return nil, apierr.New(http.StatusInternalServerError, "KYC_PROVIDER_ERROR", fmt.Errorf("pan verification failed: %w", err))
  }

  newStatus := types.VerificationFailed
  update := repos.KycVerificationUpdate{Metadata: metadataJSON(resp)}
  if providerSaysVerified(resp) {
    newStatus = types.VerificationVerified
  } else {
    reason, _ := resp["message"].(string)
    if reason == "" {
      reason = "PAN verification rejected by provider"
    }
    update.FailureReason = strPtr(reason)
  }
  update.Status = statusPtr(newStatus)
  if refID, ok := resp["reference_id"].(string); ok && refID != "" {
    update.ProviderRefID = strPtr(refID)
  }
  if err := ks.verifications.Update(ctx, nil, verification.ID, update); err != nil {
    return nil, err
  }
  verification.Status = newStatus
  verification.Metadata = update.Metadata

  if newStatus == types.VerificationVerified {
    if err := ks.CheckAndCompleteKyc(ctx, profile.ID); err != nil {
      ks.log.Error("Completion check failed after PAN verification", "profile_id", profile.ID, "error", err)
    }
  }
  return verification, nil
}

func (ks *kycService) InitiateAadhaar(ctx context.Context, userID uuid.UUID, aadhaarNumber string) (*types.KycVerification, error) {
  profile, err := ks.ensureProfile(ctx, userID)
  if err != nil {
    return nil, err
  }
  verification, err := ks.verifications.Create(ctx, nil, &types.KycVerification{
    UserID:    userID,
    ProfileID: profile.ID,
    Type:      types.VerificationAadhaar,
    Status:    types.VerificationInitiated,
  })
  if err != nil {
    return nil, err
  }

  resp, err := ks.provider.InitiateAadhaarOTP(ctx, aadhaarNumber)
  if err != nil {
    ks.failVerification(ctx, verification.ID, err.Error())
    return nil, apierr.New(http.StatusInternalServerError, "KYC_PROVIDER_ERROR", fmt.Errorf("aadhaar otp initiation failed: %w", err))
  }

  // The OTP reference comes back as ref_id; it is the only handle the
  // confirm step and webhook have to find this row again.
  refID := extractRefID(resp)
  if refID == "" {
    ks.failVerification(ctx, verification.ID, "provider returned no reference id")
    return nil, apierr.New(http.StatusInternalServerError, "KYC_PROVIDER_ERROR", errors.New("aadhaar otp initiation returned no reference id"))
  }

  update := repos.KycVerificationUpdate{
    Status:        statusPtr(types.VerificationPending),
    ProviderRefID: strPtr(refID),
    Metadata:      metadataJSON(resp),
  }
  if err := ks.verifications.Update(ctx, nil, verification.ID, update); err != nil {
    return nil, err
  }
  verification.Status = types.VerificationPending
  verification.ProviderRefID = strPtr(refID)
  verification.Metadata = update.Metadata
  return verification, nil
}

func extractRefID(resp map[string]any) string {
  switch v := resp["ref_id"].(type) {
  case string:
    return v
  case float64:
    return fmt.Sprintf("%.0f", v)
  }
  if v, ok := resp["reference_id"].(string); ok {
    return v
  }
  return ""
}

func (ks *kycService) ConfirmAadhaar(ctx context.Context, userID uuid.UUID, otp string, refID string) (*types.KycVerification, error) {
  verification, err := ks.verifications.FindByProviderRef(ctx, nil, refID)
  if err != nil {
    return nil, err
  }
  if verification == nil {
    return nil, apierr.New(http.StatusNotFound, "VERIFICATION_NOT_FOUND", errors.New("no verification found for reference id"))
  }
  if verification.UserID != userID {
    return nil, apierr.New(http.StatusForbidden, "VERIFICATION_FORBIDDEN", errors.New("verification belongs to a different user"))
  }

  resp, err := ks.provider.VerifyAadhaarOTP(ctx, otp, refID)
  if err != nil {
    ks.failVerification(ctx, verification.ID, err.Error())
    return nil, apierr.New(http.StatusInternalServerError, "KYC_PROVIDER_ERROR", fmt.Errorf("aadhaar otp verification failed: %w", err))
  }

  newStatus := types.VerificationFailed
  update := repos.KycVerificationUpdate{Metadata: metadataJSON(resp)}
  if providerSaysVerified(resp) {
    newStatus = types.VerificationVerified
  } else {
    reason, _ := resp["message"].(string)
    if reason == "" {
      reason = "Aadhaar OTP rejected by provider"
    }
    update.FailureReason = strPtr(reason)
  }
  update.Status = statusPtr(newStatus)
  if err := ks.verifications.Update(ctx, nil, verification.ID, update); err != nil {
    return nil, err
  }
  verification.Status = newStatus
  verification.Metadata = update.Metadata

  if newStatus == types.VerificationVerified {
    if err := ks.CheckAndCompleteKyc(ctx, verification.ProfileID); err != nil {
      ks.log.Error("Completion check failed after Aadhaar verification", "profile_id", verification.ProfileID, "error", err)
    }
  }
  return verification, nil
}

func (ks *kycService) VerifyBank(ctx context.Context, userID uuid.UUID, accountNumber string, ifsc string, accountHolderName string) (*types.KycVerification, error) {
  profile, err := ks.ensureProfile(ctx, userID)
  if err != nil {
    return nil, err
  }

  verification, err := ks.verifications.Create(ctx, nil, &types.KycVerification{
    UserID:    userID,
    ProfileID: profile.ID,
    Type:      types.VerificationBank,
    Status:    types.VerificationInitiated,
  })
  if err != nil {
    return nil, err
  }

  resp, err := ks.provider.VerifyBankAccount(ctx, accountNumber, ifsc)
  if err != nil {
    ks.failVerification(ctx, verification.ID, err.Error())
    return nil, apierr.New(http.StatusInternalServerError, "KYC_PROVIDER_ERROR", fmt.Errorf("bank verification failed: %w", err))
  }

  verified := providerSaysVerified(resp)
  if !verified {
    if status, _ := resp["account_status"].(string); strings.ToUpper(status) == "VALID" {
      verified = true
    }
  }

  // Vendors without a fuzzy name match return only the registered
  // holder name; score it 100/0 on equality with the holder name
  // supplied in the request so downstream consumers see a uniform
  // field.
  if _, ok := resp["name_match_score"]; !ok {
    holder, ok := resp["name_at_bank"].(string)
    if !ok {
      holder, _ = resp["name"].(string)
    }
    if holder != "" {
      score := 0.0
      if strings.EqualFold(strings.TrimSpace(holder), strings.TrimSpace(accountHolderName)) {
        score = 100.0
      }
      resp["name_match_score"] = score
    }
  }

  newStatus := types.VerificationFailed
  update := repos.KycVerificationUpdate{Metadata: metadataJSON(resp)}
  if verified {
    newStatus = types.VerificationVerified
  } else {
    reason, _ := resp["message"].(string)
    if reason == "" {
      reason = "bank account verification rejected by provider"
    }
    update.FailureReason = strPtr(reason)
  }
  update.Status = statusPtr(newStatus)
  if refID, ok := resp["reference_id"].(string); ok && refID != "" {
    update.ProviderRefID = strPtr(refID)
  }
  if err := ks.verifications.Update(ctx, nil, verification.ID, update); err != nil {
    return nil, err
  }
  verification.Status = newStatus
  verification.Metadata = update.Metadata

  if newStatus == types.VerificationVerified {
    if err := ks.CheckAndCompleteKyc(ctx, profile.ID); err != nil {
      ks.log.Error("Completion check failed after bank verification", "profile_id", profile.ID, "error", err)
    }
  }
  return verification, nil
}

func (ks *kycService) GetStatus(ctx context.Context, userID uuid.UUID) (*KycStatusResult, error) {
  profile, err := ks.profiles.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if profile == nil {
    return &KycStatusResult{
      OverallStatus: types.KycNotStarted,
      Verifications: []*types.KycVerification{},
    }, nil
  }

  verifications := make([]*types.KycVerification, 0, len(profile.Verifications))
  for i := range profile.Verifications {
    verifications = append(verifications, &profile.Verifications[i])
  }
  return &KycStatusResult{
    OverallStatus: profile.OverallStatus,
    CompletedAt:   profile.CompletedAt,
    Verifications: verifications,
  }, nil
}

// CheckAndCompleteKyc promotes the profile to COMPLETED once a
// VERIFIED row exists for all three verification types, and flips the
// user flag. Status never moves backwards: a COMPLETED profile is left
// untouched no matter what later rows say.
func (ks *kycService) CheckAndCompleteKyc(ctx context.Context, profileID uuid.UUID) error {
  profile, err := ks.profiles.GetByID(ctx, nil, profileID)
  if err != nil {
    return err
  }
  if profile == nil {
    return fmt.Errorf("kyc profile %s not found", profileID)
  }
  if profile.OverallStatus == types.KycCompleted {
    return nil
  }

  verifications, err := ks.verifications.GetByProfileID(ctx, nil, profileID)
  if err != nil {
    return err
  }

  verified := map[types.VerificationType]bool{}
  for _, v := range verifications {
    if v.Status == types.VerificationVerified {
      verified[v.Type] = true
    }
  }

  if verified[types.VerificationPan] && verified[types.VerificationAadhaar] && verified[types.VerificationBank] {
    now := time.Now().UTC()
    if err := ks.profiles.UpdateStatus(ctx, nil, profileID, types.KycCompleted, &now); err != nil {
      return err
    }
    if err := ks.users.MarkKycVerified(ctx, nil, profile.UserID); err != nil {
      return err
    }
    ks.log.Info("KYC completed", "profile_id", profileID, "user_id", profile.UserID)
    return nil
  }

  if len(verifications) > 0 && profile.OverallStatus == types.KycNotStarted {
    return ks.profiles.UpdateStatus(ctx, nil, profileID, types.KycInProgress, nil)
  }
  return nil
}
