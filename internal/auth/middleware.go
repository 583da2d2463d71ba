package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

const tokenKey = "auth_bearer_token"

// AuthMiddleware extracts the bearer credential from the Authorization header. Verification
// happens in the services through the SessionManager, so every scoped operation checks it.
type AuthMiddleware struct{}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{}
}

// Handle rejects requests without a credential and stores it for handlers.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := ParseAuthorizationHeader(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	c.Locals(tokenKey, token)
	return c.Next()
}

// ParseAuthorizationHeader accepts "Bearer <token>" or a bare token.
func ParseAuthorizationHeader(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 {
		if !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	if strings.EqualFold(header, "Bearer") {
		return "", false
	}
	return header, true
}

// TokenFromContext retrieves the bearer credential stored by Handle.
func TokenFromContext(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(tokenKey).(string)
	return token, ok && token != ""
}
