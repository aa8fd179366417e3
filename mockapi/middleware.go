package mockapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerMiddleware validates the session token on protected endpoints.
// Unlike rejections, a missing or invalid token answers with the envelope
// `retorno:false` so clients decode it uniformly.
func BearerMiddleware(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"retorno": false, "descricao": "Sessão ausente"})
			return
		}

		claims, err := s.verifyToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"retorno": false, "descricao": "Sessão inválida"})
			return
		}

		c.Set("userCode", claims.Subject)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}
