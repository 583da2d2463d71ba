package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

func TestParseAuthorizationHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"bearer", "", false},
		{"  BEARER\t", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "abc.def.ghi", true},
	}
	for _, tt := range tests {
		token, ok := ParseAuthorizationHeader(tt.header)
		assert.Equal(t, tt.ok, ok, "header %q", tt.header)
		assert.Equal(t, tt.token, token, "header %q", tt.header)
	}
}

func TestAuthMiddleware_Handle(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/", NewAuthMiddleware().Handle, func(c *fiber.Ctx) error {
		token, ok := TokenFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendString(token)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
