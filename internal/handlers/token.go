package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/realblock/realblock-backend/internal/requestdata"
  "github.com/realblock/realblock-backend/internal/services"
)

type TokenHandler struct {
  tokenService    services.TokenService
}

func NewTokenHandler(tokenService services.TokenService) *TokenHandler {
  return &TokenHandler{tokenService: tokenService}
}

func (th *TokenHandler) Purchase(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", errors.New("missing request identity"))
    return
  }
  var req struct {
    PropertyID    string      `json:"property_id"`
    Amount        float64     `json:"amount"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  propertyID, err := uuid.Parse(req.PropertyID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_PROPERTY_ID", errors.New("invalid property id"))
    return
  }
  if req.Amount <= 0 {
    RespondError(c, http.StatusBadRequest, "INVALID_AMOUNT", errors.New("amount must be positive"))
    return
  }
  result, err := th.tokenService.Purchase(c.Request.Context(), rd.UserID, propertyID, req.Amount)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, result)
}
