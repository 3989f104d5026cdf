package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
)

const CtxUserIDKey = "userID"

// SessionKeyFunc names the Redis hash that holds a user's active session.
type SessionKeyFunc func(userID string) string

// Auth accepts "Authorization: Bearer <token>" or the access_token cookie.
// When rdb is set the token's session id must match the one stored in Redis.
// It sets userID (and userName/userEmail when a session exists) in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager, sessionKey SessionKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			abort(c, "invalid access token", err.Error())
			return
		}

		if rdb != nil && sessionKey != nil {
			data, err := rdb.HGetAll(c.Request.Context(), sessionKey(claims.UserID)).Result()
			if err != nil || len(data) == 0 {
				abort(c, "session not found", nil)
				return
			}
			if sid := data["sid"]; sid != "" && sid != claims.SessionID {
				abort(c, "session expired", nil)
				return
			}
			c.Set("userName", data["name"])
			c.Set("userEmail", data["email"])
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	tok, err := c.Cookie(helpers.AccessCookie)
	if err != nil {
		return ""
	}
	return tok
}

func abort(c *gin.Context, msg string, detail any) {
	response.Error[any](c, http.StatusUnauthorized, msg, detail)
	c.Abort()
}
