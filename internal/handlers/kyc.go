package handlers

import (
  "errors"
  "net/http"
  "regexp"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/realblock/realblock-backend/internal/requestdata"
  "github.com/realblock/realblock-backend/internal/services"
)

// Format gates applied before any provider call; a malformed number
// never leaves the process.
var (
  panPattern       = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
  aadhaarPattern   = regexp.MustCompile(`^[0-9]{12}$`)
  otpPattern       = regexp.MustCompile(`^[0-9]{6}$`)
  ifscPattern      = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
  accountPattern   = regexp.MustCompile(`^[0-9]{9,18}$`)
)

type KycHandler struct {
  kycService    services.KycService
}

func NewKycHandler(kycService services.KycService) *KycHandler {
  return &KycHandler{kycService: kycService}
}

func (kh *KycHandler) VerifyPan(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  var req struct {
    PanNumber   string      `json:"panNumber"`
    Name        string      `json:"name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  pan := strings.ToUpper(strings.TrimSpace(req.PanNumber))
  if !panPattern.MatchString(pan) {
    RespondError(c, http.StatusBadRequest, "INVALID_PAN", errors.New("invalid PAN format"))
    return
  }
  if strings.TrimSpace(req.Name) == "" {
    RespondError(c, http.StatusBadRequest, "INVALID_NAME", errors.New("name is required"))
    return
  }
  verification, err := kh.kycService.VerifyPan(c.Request.Context(), rd.UserID, pan, strings.TrimSpace(req.Name))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, verification)
}

func (kh *KycHandler) InitiateAadhaar(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  var req struct {
    AadhaarNumber   string  `json:"aadhaarNumber"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  aadhaar := strings.TrimSpace(req.AadhaarNumber)
  if !aadhaarPattern.MatchString(aadhaar) {
    RespondError(c, http.StatusBadRequest, "INVALID_AADHAAR", errors.New("invalid Aadhaar number format"))
    return
  }
  verification, err := kh.kycService.InitiateAadhaar(c.Request.Context(), rd.UserID, aadhaar)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, verification)
}

func (kh *KycHandler) ConfirmAadhaar(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  var req struct {
    Otp           string    `json:"otp"`
    ReferenceID   string    `json:"referenceId"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  otp := strings.TrimSpace(req.Otp)
  if !otpPattern.MatchString(otp) {
    RespondError(c, http.StatusBadRequest, "INVALID_OTP", errors.New("invalid OTP format"))
    return
  }
  if strings.TrimSpace(req.ReferenceID) == "" {
    RespondError(c, http.StatusBadRequest, "INVALID_REFERENCE_ID", errors.New("referenceId is required"))
    return
  }
  verification, err := kh.kycService.ConfirmAadhaar(c.Request.Context(), rd.UserID, otp, strings.TrimSpace(req.ReferenceID))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, verification)
}

func (kh *KycHandler) VerifyBank(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  var req struct {
    AccountNumber       string  `json:"accountNumber"`
    Ifsc                string  `json:"ifsc"`
    AccountHolderName   string  `json:"accountHolderName"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  account := strings.TrimSpace(req.AccountNumber)
  ifsc := strings.ToUpper(strings.TrimSpace(req.Ifsc))
  holderName := strings.TrimSpace(req.AccountHolderName)
  if !accountPattern.MatchString(account) {
    RespondError(c, http.StatusBadRequest, "INVALID_ACCOUNT", errors.New("invalid bank account number"))
    return
  }
  if !ifscPattern.MatchString(ifsc) {
    RespondError(c, http.StatusBadRequest, "INVALID_IFSC", errors.New("invalid IFSC code"))
    return
  }
  if holderName == "" {
    RespondError(c, http.StatusBadRequest, "INVALID_HOLDER_NAME", errors.New("accountHolderName is required"))
    return
  }
  verification, err := kh.kycService.VerifyBank(c.Request.Context(), rd.UserID, account, ifsc, holderName)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, verification)
}

func (kh *KycHandler) GetStatus(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  status, err := kh.kycService.GetStatus(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, status)
}
