package handlers

import (
  "crypto/hmac"
  "crypto/sha256"
  "encoding/base64"
  "encoding/json"
  "errors"
  "fmt"
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "gorm.io/datatypes"

  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/services"
  "github.com/realblock/realblock-backend/internal/types"
  "github.com/realblock/realblock-backend/internal/utils"
)

// Vendors have shipped the signature under several header names over
// time; checked in order, first non-empty wins.
var signatureHeaders = []string{
  "x-cashfree-signature",
  "x-webhook-signature",
  "x-cf-signature",
  "signature",
  "x-signature",
}

type WebhookHandler struct {
  log             *logger.Logger
  kycService      services.KycService
  verifications   repos.KycVerificationRepo
  secret          []byte
}

func NewWebhookHandler(kycService services.KycService, verifications repos.KycVerificationRepo, baseLog *logger.Logger) *WebhookHandler {
  handlerLog := baseLog.With("handler", "WebhookHandler")
  return &WebhookHandler{
    log:           handlerLog,
    kycService:    kycService,
    verifications: verifications,
    secret:        []byte(utils.GetEnv("CASHFREE_WEBHOOK_SECRET", "", handlerLog)),
  }
}

type webhookPayload struct {
  Type        string          `json:"type"`
  Event       string          `json:"event"`
  Signature   string          `json:"signature"`
  Data        map[string]any  `json:"data"`
}

// isTestEvent matches the provider's dashboard "send test webhook"
// button and its scheduled account notifications; neither corresponds
// to a verification and both must be acknowledged.
func isTestEvent(p webhookPayload) bool {
  for _, v := range []string{p.Type, p.Event} {
    lower := strings.ToLower(v)
    if strings.Contains(lower, "test") || lower == "low_balance_alert" {
      return true
    }
  }
  return false
}

func (wh *WebhookHandler) signatureFromRequest(c *gin.Context, p webhookPayload) string {
  for _, name := range signatureHeaders {
    if v := c.GetHeader(name); v != "" {
      return v
    }
  }
  return p.Signature
}

func (wh *WebhookHandler) computeSignature(rawBody []byte) string {
  mac := hmac.New(sha256.New, wh.secret)
  mac.Write(rawBody)
  return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRefID(data map[string]any) string {
  for _, key := range []string{"ref_id", "reference_id"} {
    switch v := data[key].(type) {
    case string:
      if v != "" {
        return v
      }
    case float64:
      return fmt.Sprintf("%.0f", v)
    }
  }
  return ""
}

func (wh *WebhookHandler) HandleKycWebhook(c *gin.Context) {
  rawBody, err := c.GetRawData()
  if err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("failed to read request body"))
    return
  }

  var payload webhookPayload
  if err := json.Unmarshal(rawBody, &payload); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid webhook payload"))
    return
  }

  // Test events are acknowledged before the signature gate; the
  // provider's test button does not sign with the account secret.
  if isTestEvent(payload) {
    RespondOK(c, gin.H{"received": true})
    return
  }

  provided := wh.signatureFromRequest(c, payload)
  if provided == "" {
    RespondError(c, http.StatusUnauthorized, "MISSING_SIGNATURE", errors.New("missing webhook signature"))
    return
  }
  expected := wh.computeSignature(rawBody)
  if !hmac.Equal([]byte(provided), []byte(expected)) {
    wh.log.Warn("Webhook signature mismatch")
    RespondError(c, http.StatusUnauthorized, "INVALID_SIGNATURE", errors.New("invalid webhook signature"))
    return
  }

  refID := webhookRefID(payload.Data)
  if refID == "" {
    RespondOK(c, gin.H{"received": true})
    return
  }

  ctx := c.Request.Context()
  verification, err := wh.verifications.FindByProviderRef(ctx, nil, refID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  if verification == nil {
    wh.log.Warn("Webhook for unknown verification", "ref_id", refID)
    RespondOK(c, gin.H{"received": true})
    return
  }
  // Replays and out-of-order deliveries after terminal success are
  // acknowledged without touching the row.
  if verification.Status == types.VerificationVerified {
    RespondOK(c, gin.H{"received": true})
    return
  }

  status, _ := payload.Data["status"].(string)
  newStatus := types.VerificationFailed
  if strings.EqualFold(status, "SUCCESS") || strings.EqualFold(status, "VALID") {
    newStatus = types.VerificationVerified
  }

  update := repos.KycVerificationUpdate{
    Status:   &newStatus,
    Metadata: wh.mergeWebhookMetadata(verification.Metadata, payload.Data),
  }
  if newStatus == types.VerificationFailed {
    reason, _ := payload.Data["reason"].(string)
    if reason == "" {
      reason = "verification failed per provider webhook"
    }
    update.FailureReason = &reason
  }
  if err := wh.verifications.Update(ctx, nil, verification.ID, update); err != nil {
    RespondServiceError(c, err)
    return
  }

  if newStatus == types.VerificationVerified {
    if err := wh.kycService.CheckAndCompleteKyc(ctx, verification.ProfileID); err != nil {
      wh.log.Error("Completion check failed after webhook", "profile_id", verification.ProfileID, "error", err)
    }
  }
  RespondOK(c, gin.H{"received": true})
}

func (wh *WebhookHandler) mergeWebhookMetadata(existing datatypes.JSON, data map[string]any) datatypes.JSON {
  merged := map[string]any{}
  if len(existing) > 0 {
    if err := json.Unmarshal(existing, &merged); err != nil {
      merged = map[string]any{}
    }
  }
  merged["webhookData"] = data
  b, err := json.Marshal(merged)
  if err != nil {
    return existing
  }
  return datatypes.JSON(b)
}
