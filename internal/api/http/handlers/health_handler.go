package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// SessionCounter reports how many sessions the registry holds.
type SessionCounter interface {
	ActiveSessions() int
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	sessions    SessionCounter
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, sessions: sessions}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness. All state is in memory, so a wired session manager is the only requirement.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.sessions == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "session manager not initialized",
			},
		})
	}
	return c.JSON(fiber.Map{
		"status": "ready",
		"dependencies": fiber.Map{
			"sessions": fiber.Map{"status": "ok", "active": h.sessions.ActiveSessions()},
		},
	})
}
