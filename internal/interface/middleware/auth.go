package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/andriansp/gocommerce/pkg/helpers"
	"github.com/andriansp/gocommerce/pkg/response"
)

// bearerToken extracts the credential from the Authorization header, falling
// back to the access_token cookie for browser clients.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, found := strings.CutPrefix(h, "Bearer "); found {
			return strings.TrimSpace(tok)
		}
	}
	if tok, err := c.Cookie("access_token"); err == nil {
		return tok
	}
	return ""
}

// Auth validates the bearer token and, when Redis is available, checks that
// it is still the user's live credential (logout and deactivation delete
// it). Sets userID, userName, and userEmail in the Gin context on success.
func Auth(rdb *redis.Client, tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		if rdb != nil {
			stored, err := rdb.Get(c.Request.Context(), "auth:token:user:"+claims.UserID).Result()
			if err != nil || stored != token {
				response.Error[any](c, http.StatusUnauthorized, "token revoked", nil)
				c.Abort()
				return
			}
			if data, err := rdb.HGetAll(c.Request.Context(), "user:session:"+claims.UserID).Result(); err == nil {
				c.Set("userName", data["name"])
				c.Set("userEmail", data["email"])
			}
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}
