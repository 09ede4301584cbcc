package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"helix-api/internal/service"
)

const sessionKey = "helix.session"

// requireSession exige un access token Bearer y deja la identidad en el contexto.
// Un token vencido responde con un error distinto para que el cliente sepa refrescar.
func requireSession(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
			return
		}
		scheme, token, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(sessionKey, claims.Identity())
		c.Next()
	}
}

// sessionIdentity devuelve la identidad que dejo requireSession.
func sessionIdentity(c *gin.Context) (service.Identity, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return service.Identity{}, false
	}
	id, ok := v.(service.Identity)
	return id, ok && id.UserID != ""
}

// currentUserID devuelve el id del usuario autenticado o responde 401.
func currentUserID(c *gin.Context) (string, bool) {
	id, ok := sessionIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return id.UserID, true
}
