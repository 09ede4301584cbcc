package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helix-api/internal/service"
)

type PartnerHandler struct {
	logger   *zap.Logger
	partners *service.PartnerService
}

func NewPartnerHandler(logger *zap.Logger, partners *service.PartnerService) *PartnerHandler {
	return &PartnerHandler{logger: logger, partners: partners}
}

// Save maneja PUT /partner.
func (h *PartnerHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name       string  `json:"name" binding:"required"`
		HeightCM   float64 `json:"height_cm" binding:"required"`
		IQ         float64 `json:"iq" binding:"required"`
		EyeColor   string  `json:"eye_color"`
		Population string  `json:"population"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid partner request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	partner, err := h.partners.Save(c.Request.Context(), userID, service.PartnerInput{
		Name:       req.Name,
		HeightCM:   req.HeightCM,
		IQ:         req.IQ,
		EyeColor:   req.EyeColor,
		Population: req.Population,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPartner) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("save partner failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save partner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": partner})
}

// Get maneja GET /partner.
func (h *PartnerHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	partner, err := h.partners.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
			return
		}
		h.logger.Error("load partner failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load partner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": partner})
}
