package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helix-api/internal/service"
)

type TraitHandler struct {
	traits *service.TraitService
}

func NewTraitHandler(traits *service.TraitService) *TraitHandler {
	return &TraitHandler{traits: traits}
}

// List maneja GET /traits.
func (h *TraitHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"traits": h.traits.Catalog(c.Request.Context())})
}

type DashboardHandler struct {
	logger    *zap.Logger
	dashboard *service.DashboardService
}

func NewDashboardHandler(logger *zap.Logger, dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{logger: logger, dashboard: dashboard}
}

// Get maneja GET /dashboard.
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	dash, err := h.dashboard.Load(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("load dashboard failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load dashboard"})
		return
	}
	// el encabezado del panel sale de la sesion, sin releer el perfil
	session, _ := sessionIdentity(c)
	c.JSON(http.StatusOK, gin.H{"dashboard": dash, "user": session})
}
