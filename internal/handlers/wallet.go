package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/realblock/realblock-backend/internal/requestdata"
  "github.com/realblock/realblock-backend/internal/services"
)

type WalletHandler struct {
  walletService   services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
  return &WalletHandler{walletService: walletService}
}

func (wh *WalletHandler) GetWallet(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  wallet, err := wh.walletService.GetWallet(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, wallet)
}

func (wh *WalletHandler) Deposit(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  var req struct {
    Amount      float64     `json:"amount"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  wallet, err := wh.walletService.Deposit(c.Request.Context(), rd.UserID, req.Amount)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, wallet)
}

func (wh *WalletHandler) Withdraw(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  var req struct {
    Amount      float64     `json:"amount"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  wallet, err := wh.walletService.Withdraw(c.Request.Context(), rd.UserID, req.Amount)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, wallet)
}
