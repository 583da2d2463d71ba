package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/linkshelf/bookmark-service/internal/observability"
	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

// NewApp builds the Fiber application with the settings every deployment shares.
func NewApp(appName string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          envelopeErrorHandler,
	})
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestid.New())
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				method := utils.CopyString(c.Method())
				metrics.RecordError(c.Route().Path, method, domainErr.Code)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("path", utils.CopyString(c.Path())),
						zap.String("method", method),
						zap.Error(domainErr))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// envelopeErrorHandler catches errors that bypass the middleware chain.
func envelopeErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, apperrors.ToDomainError(err))
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}
