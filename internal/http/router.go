package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"helix-api/internal/service"
)

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	User       *UserHandler
	Profile    *ProfileHandler
	Simulation *SimulationHandler
	Trait      *TraitHandler
	Genetic    *GeneticProfileHandler
	Partner    *PartnerHandler
	Dashboard  *DashboardHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, tokens *service.TokenService, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(requestLogger(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/signup", h.User.SignUp)
	auth.POST("/login", h.User.Login)
	auth.POST("/refresh", h.User.RefreshToken)
	auth.POST("/logout", h.User.Logout)
	auth.POST("/otp/request", h.User.RequestOTP)
	auth.POST("/otp/verify", h.User.VerifyOTP)
	auth.GET("/me", requireSession(tokens), h.User.Me)
	auth.POST("/logout-all", requireSession(tokens), h.User.LogoutAll)

	// Catalogo y simulacion anonima no requieren sesion.
	r.GET("/traits", h.Trait.List)
	r.POST("/simulations/preview", h.Simulation.Preview)

	protected := r.Group("")
	protected.Use(requireSession(tokens))

	protected.GET("/profile", h.Profile.Get)
	protected.PATCH("/profile", h.Profile.Update)

	sims := protected.Group("/simulations")
	sims.POST("", h.Simulation.Run)
	sims.GET("", h.Simulation.List)
	sims.GET("/:id", h.Simulation.Get)
	sims.GET("/:id/similar", h.Simulation.Similar)

	protected.POST("/genetic-profile", h.Genetic.Generate)
	protected.GET("/genetic-profile", h.Genetic.Get)

	protected.PUT("/partner", h.Partner.Save)
	protected.GET("/partner", h.Partner.Get)

	protected.GET("/dashboard", h.Dashboard.Get)

	return r
}

const requestIDHeader = "X-Request-ID"

// requestLogger propaga (o genera) el X-Request-ID y deja una linea por request.
// Los 5xx salen en nivel error.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := sessionIdentity(c); ok {
			fields = append(fields, zap.String("user_id", id.UserID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
