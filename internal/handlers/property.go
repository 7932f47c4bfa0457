package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/realblock/realblock-backend/internal/services"
)

type PropertyHandler struct {
  propertyService   services.PropertyService
}

func NewPropertyHandler(propertyService services.PropertyService) *PropertyHandler {
  return &PropertyHandler{propertyService: propertyService}
}

func (ph *PropertyHandler) GetAll(c *gin.Context) {
  properties, err := ph.propertyService.GetAll(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, properties)
}

func (ph *PropertyHandler) GetFeatured(c *gin.Context) {
  properties, err := ph.propertyService.GetFeatured(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, properties)
}

func (ph *PropertyHandler) GetByID(c *gin.Context) {
  propertyID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "INVALID_PROPERTY_ID", errors.New("invalid property id"))
    return
  }
  property, err := ph.propertyService.GetByID(c.Request.Context(), propertyID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, property)
}
