package middleware

import (
	"errors"
	"strings"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthenticateToken verifies the bearer token and stores the decoded identity
// on the context.
func AuthenticateToken(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			return
		}
		c.Next()
	}
}

// AuthorizeRoles allows the request through only when the authenticated
// identity carries one of roles. It must run after AuthenticateToken.
func AuthorizeRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, roles) {
			return
		}
		c.Next()
	}
}

// Restrict authenticates the caller and checks the role allow-list in one
// handler, for per-route registration.
func Restrict(tokens *utils.TokenManager, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			return
		}
		if !authorize(c, roles) {
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by AuthenticateToken
func CurrentIdentity(c *gin.Context) (utils.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return utils.Identity{}, false
	}
	identity, ok := v.(utils.Identity)
	return identity, ok
}

func authenticate(c *gin.Context, tokens *utils.TokenManager) bool {
	token := ""
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}
	}

	if token == "" {
		utils.UnauthorizedResponse(c, "Access denied. No token provided.")
		c.Abort()
		return false
	}

	identity, err := tokens.VerifyToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			utils.UnauthorizedResponse(c, "Token expired.")
		} else {
			utils.UnauthorizedResponse(c, "Invalid token.")
		}
		c.Abort()
		return false
	}

	c.Set(identityKey, identity)
	return true
}

func authorize(c *gin.Context, roles []models.Role) bool {
	identity, ok := CurrentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required.")
		c.Abort()
		return false
	}

	for _, role := range roles {
		if identity.Role == role {
			return true
		}
	}

	utils.ForbiddenResponse(c, "Access denied. Insufficient permissions.")
	c.Abort()
	return false
}
