package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "net/url"
  "time"

  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/utils"
)

// KycProvider is the verification vendor boundary. Responses are kept
// as loosely typed maps because the vendor payloads vary by product
// and the orchestrator only inspects a handful of fields; everything
// else is stored as verification metadata verbatim.
type KycProvider interface {
  VerifyPan(ctx context.Context, pan string, name string) (map[string]any, error)
  InitiateAadhaarOTP(ctx context.Context, aadhaarNumber string) (map[string]any, error)
  VerifyAadhaarOTP(ctx context.Context, otp string, refID string) (map[string]any, error)
  VerifyBankAccount(ctx context.Context, accountNumber string, ifsc string) (map[string]any, error)
}

type cashfreeProvider struct {
  log        *logger.Logger
  baseURL    string
  clientID   string
  secret     string
  httpClient *http.Client
}

func NewCashfreeProvider(log *logger.Logger) KycProvider {
  providerLog := log.With("service", "CashfreeProvider")
  return &cashfreeProvider{
    log:        providerLog,
    baseURL:    utils.GetEnv("CASHFREE_BASE_URL", "https://sandbox.cashfree.com/verification", providerLog),
    clientID:   utils.GetEnv("CASHFREE_CLIENT_ID", "", providerLog),
    secret:     utils.GetEnv("CASHFREE_CLIENT_SECRET", "", providerLog),
    httpClient: &http.Client{Timeout: 30 * time.Second},
  }
}

type providerHTTPError struct {
  StatusCode int
  Body       string
}

func (e *providerHTTPError) Error() string {
  return fmt.Sprintf("cashfree http %d: %s", e.StatusCode, e.Body)
}

func (p *cashfreeProvider) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, &buf)
  if err != nil {
    return nil, err
  }
  req.Header.Set("x-client-id", p.clientID)
  req.Header.Set("x-client-secret", p.secret)
  req.Header.Set("Content-Type", "application/json")

  resp, err := p.httpClient.Do(req)
  if err != nil {
    return nil, err
  }
  defer resp.Body.Close()

  raw, err := io.ReadAll(resp.Body)
  if err != nil {
    return nil, err
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    p.log.Warn("Cashfree request failed", "path", path, "status", resp.StatusCode)
    return nil, &providerHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }

  var out map[string]any
  if err := json.Unmarshal(raw, &out); err != nil {
    return nil, fmt.Errorf("cashfree decode error: %w", err)
  }
  return out, nil
}

func (p *cashfreeProvider) VerifyPan(ctx context.Context, pan string, name string) (map[string]any, error) {
  return p.do(ctx, http.MethodPost, "/pan", map[string]any{
    "pan":  pan,
    "name": name,
  })
}

func (p *cashfreeProvider) InitiateAadhaarOTP(ctx context.Context, aadhaarNumber string) (map[string]any, error) {
  return p.do(ctx, http.MethodPost, "/offline-aadhaar/otp", map[string]any{
    "aadhaar_number": aadhaarNumber,
  })
}

func (p *cashfreeProvider) VerifyAadhaarOTP(ctx context.Context, otp string, refID string) (map[string]any, error) {
  return p.do(ctx, http.MethodPost, "/offline-aadhaar/verify", map[string]any{
    "otp":    otp,
    "ref_id": refID,
  })
}

func (p *cashfreeProvider) VerifyBankAccount(ctx context.Context, accountNumber string, ifsc string) (map[string]any, error) {
  q := url.Values{}
  q.Set("bank_account", accountNumber)
  q.Set("ifsc", ifsc)
  return p.do(ctx, http.MethodGet, "/bank-account/sync?"+q.Encode(), nil)
}
