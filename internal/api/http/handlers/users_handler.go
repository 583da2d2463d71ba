package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/linkshelf/bookmark-service/internal/api/dto"
	"github.com/linkshelf/bookmark-service/internal/auth"
	"github.com/linkshelf/bookmark-service/internal/service"
	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

// UsersHandler exposes account and session endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Register handles POST {root}/user/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserCredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// Login handles POST {root}/user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserCredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, exp, err := h.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.NewAuthResponse(token, exp),
		},
	})
}

// Logout handles POST {root}/user/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, _ := auth.TokenFromContext(c)

	if err := h.users.Logout(c.UserContext(), req.Username, token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Me handles GET {root}/user/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	token, _ := auth.TokenFromContext(c)
	user, err := h.users.Me(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// ChangePassword handles PUT {root}/user/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, _ := auth.TokenFromContext(c)

	if err := h.users.ChangePassword(c.UserContext(), token, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete handles DELETE {root}/user/:name.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	token, _ := auth.TokenFromContext(c)
	if err := h.users.Delete(c.UserContext(), c.Params("name"), token); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": service.ReasonInvalidData})
	}
	return dto.Validate(out)
}
