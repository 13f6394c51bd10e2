package httpapi

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// SavedMessage is returned after a search is logged.
const SavedMessage = "Búsqueda guardada correctamente."

var validate = validator.New()

// RegisterRoutes wires the search log handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, searches weather.SearchLog) {
	api := app.Group("/api")

	api.Post("/search", func(c *fiber.Ctx) error {
		var req weather.SearchRecord
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ip := c.IP()
		id, err := searches.Append(c.UserContext(), weather.SearchEvent{
			IP:         ip,
			City:       req.City,
			SearchType: req.SearchType,
			Result:     req.Result,
		})
		if err != nil {
			log.Error().Err(err).Str("ip", ip).Str("city", req.City).Msg("failed to save search")
			return fiber.NewError(fiber.StatusInternalServerError, apperrors.Message(err))
		}

		return c.JSON(fiber.Map{
			"message": SavedMessage,
			"id":      id,
		})
	})

	api.Get("/history", func(c *fiber.Ctx) error {
		ip := c.IP()
		events, err := searches.ListByIP(c.UserContext(), ip)
		if err != nil {
			log.Error().Err(err).Str("ip", ip).Msg("failed to load history")
			return fiber.NewError(fiber.StatusInternalServerError, apperrors.Message(err))
		}
		if events == nil {
			events = []weather.SearchEvent{}
		}
		return c.JSON(events)
	})
}

// RegisterStatic serves the informational landing page from dir. It reports
// false when dir does not exist, leaving only the API mounted.
func RegisterStatic(app *fiber.App, dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	app.Static("/", dir)
	return true
}

// NewAppConfig returns the Fiber settings the search log handlers depend on.
// With a proxy header set, the first valid address in it becomes the client IP.
func NewAppConfig(proxyHeader string) fiber.Config {
	return fiber.Config{
		ProxyHeader:        proxyHeader,
		EnableIPValidation: true,
		ErrorHandler:       ErrorHandler,
	}
}

// ErrorHandler renders every error as {"error": message} with the status of a *fiber.Error (500 otherwise).
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
