package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/grocerylab/grocery-api/internal/auth"
	"github.com/grocerylab/grocery-api/pkg/crypto"
	"github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
)

// Auth enforces JWT authentication. Tokens carry the fingerprint of the
// browser they were issued to; a request from a different browser is rejected
// even when the signature checks out.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if claims.Fingerprint != "" &&
			claims.Fingerprint != crypto.FingerprintHash(c.Request.UserAgent()) {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)

		c.Next()
	}
}

// UserID extracts the authenticated shopper's id from the request context.
func UserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(CtxUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}
