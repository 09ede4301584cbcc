package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helix-api/internal/service"
)

type GeneticProfileHandler struct {
	logger  *zap.Logger
	genetic *service.GeneticProfileService
}

func NewGeneticProfileHandler(logger *zap.Logger, genetic *service.GeneticProfileService) *GeneticProfileHandler {
	return &GeneticProfileHandler{logger: logger, genetic: genetic}
}

// Generate maneja POST /genetic-profile.
func (h *GeneticProfileHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	data, err := h.genetic.Generate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("generate genetic profile failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate genetic profile"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"genetic_profile": data})
}

// Get maneja GET /genetic-profile.
func (h *GeneticProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	data, err := h.genetic.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrGeneticProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "genetic profile not found"})
			return
		}
		h.logger.Error("load genetic profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load genetic profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"genetic_profile": data})
}
