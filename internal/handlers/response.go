package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/realblock/realblock-backend/internal/apierr"
)

type APIError struct {
  Message     string  `json:"message"`
  Code        string  `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error       APIError  `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondServiceError maps service-layer errors to the envelope. An
// *apierr.Error carries its own status and code; anything else is an
// opaque 500.
func RespondServiceError(c *gin.Context, err error) {
  var apiErr *apierr.Error
  if errors.As(err, &apiErr) {
    RespondError(c, apiErr.Status, apiErr.Code, apiErr)
    return
  }
  RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors.New("internal server error"))
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}
