package rest

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/server/models"
)

const userKey = "storefront.user"

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		s.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// authRequired resolves the bearer token to a user and stores it on the
// context. Requests without a valid token are aborted with 401.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			s.abort(c, common.ErrorUnauthorized)
			return
		}

		user, err := s.deps.Users.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.abort(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// currentUser is only valid behind authRequired.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}
