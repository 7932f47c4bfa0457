package handlers

import (
  "errors"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/realblock/realblock-backend/internal/services"
)

type AuthHandler struct {
  authService   services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Signup(c *gin.Context) {
  var req struct {
    Email       string      `json:"email"`
    Password    string      `json:"password"`
    Name        string      `json:"name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  if strings.TrimSpace(req.Email) == "" || len(req.Password) < 8 {
    RespondError(c, http.StatusBadRequest, "INVALID_INPUT", errors.New("email is required and password must be at least 8 characters"))
    return
  }
  result, err := ah.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, result)
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email       string      `json:"email"`
    Password    string      `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("invalid request body"))
    return
  }
  result, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, result)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  var req struct {
    RefreshToken  string    `json:"refresh_token"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
    RespondError(c, http.StatusBadRequest, "INVALID_BODY", errors.New("refresh_token is required"))
    return
  }
  result, err := ah.authService.Refresh(c.Request.Context(), req.RefreshToken)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, result)
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  token := bearerToken(c)
  if token == "" {
    RespondError(c, http.StatusUnauthorized, "MISSING_TOKEN", errors.New("missing authorization token"))
    return
  }
  if err := ah.authService.Logout(c.Request.Context(), token); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "logged out successfully"})
}

// bearerToken accepts both "Bearer x" and a bare token value.
func bearerToken(c *gin.Context) string {
  header := c.GetHeader("Authorization")
  if header == "" {
    return ""
  }
  if strings.HasPrefix(header, "Bearer ") {
    return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
  }
  return strings.TrimSpace(header)
}
