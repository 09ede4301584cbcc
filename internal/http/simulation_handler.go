package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helix-api/internal/genetics"
	"helix-api/internal/service"
)

type SimulationHandler struct {
	logger *zap.Logger
	sims   *service.SimulationService
}

func NewSimulationHandler(logger *zap.Logger, sims *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{logger: logger, sims: sims}
}

type runSimulationRequest struct {
	Traits      []string              `json:"traits"`
	Seed        *int64                `json:"seed"`
	Parents     *genetics.ParentPair  `json:"parents"`
	Environment *genetics.Environment `json:"environment"`
}

// Run maneja POST /simulations. Si el guardado falla responde 200 con saved=false.
func (h *SimulationHandler) Run(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.run(c, userID)
}

// Preview maneja POST /simulations/preview: misma corrida, sin sesion y sin guardar.
func (h *SimulationHandler) Preview(c *gin.Context) {
	h.run(c, "")
}

func (h *SimulationHandler) run(c *gin.Context, userID string) {
	var req runSimulationRequest
	// Un body vacio equivale a pedir los valores por defecto.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid simulation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sim, err := h.sims.Run(c.Request.Context(), userID, service.RunSimulationInput{
		Traits:      req.Traits,
		Seed:        req.Seed,
		Parents:     req.Parents,
		Environment: req.Environment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSimulationNotSaved):
			c.JSON(http.StatusOK, gin.H{
				"simulation": sim,
				"saved":      false,
				"warning":    "simulation completed but could not be saved",
			})
		case errors.Is(err, service.ErrTooManyTraits), errors.Is(err, service.ErrInvalidParents):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "simulation cancelled"})
		default:
			h.logger.Error("run simulation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not run simulation"})
		}
		return
	}

	if userID == "" {
		c.JSON(http.StatusOK, gin.H{"simulation": sim, "saved": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"simulation": sim, "saved": true})
}

// List maneja GET /simulations?limit=.
func (h *SimulationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	sims, err := h.sims.List(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("list simulations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list simulations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulations": sims})
}

// Get maneja GET /simulations/:id.
func (h *SimulationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sim, err := h.sims.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulation": sim})
}

// Similar maneja GET /simulations/:id/similar?k=.
func (h *SimulationHandler) Similar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	k, ok := queryInt(c, "k")
	if !ok {
		return
	}
	sims, err := h.sims.Similar(c.Request.Context(), userID, c.Param("id"), k)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulations": sims})
}

func (h *SimulationHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSimulationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "simulation not found"})
		return
	}
	h.logger.Error("load simulation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load simulation"})
}

// queryInt lee un entero opcional; 0 si falta. Responde 400 si no es un entero no negativo.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
