package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/lead-gateway/internal/config"
	"github.com/octobees/lead-gateway/internal/handler"
	middlewarepkg "github.com/octobees/lead-gateway/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Submit *handler.SubmitHandler
	Health *handler.HealthHandler
}

// New builds the echo instance with middleware and routes registered.
func New(cfg *config.Config, handlers Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = notFoundErrorHandler(e)

	// Pre middleware runs before routing so OPTIONS on unknown paths is still
	// answered and logged.
	e.Pre(echoMiddleware.Recover())
	e.Pre(middlewarepkg.RequestID())
	e.Pre(middlewarepkg.Logging())

	Register(e, cfg, handlers)
	return e
}

// Register wires all HTTP routes for the gateway.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	policy := middlewarepkg.NewCORSPolicy(cfg.AllowedOrigins)

	e.Pre(middlewarepkg.Preflight(policy))

	e.GET("/health", handlers.Health.Check)
	e.POST("/submit", handlers.Submit.Submit, middlewarepkg.CORS(policy), middlewarepkg.OriginGate(policy))
}

// notFoundErrorHandler answers unknown routes, and known paths hit with the
// wrong method, with a bare 404. Everything else goes to echo's default.
func notFoundErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) && (he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed) {
			c.Response().Header().Del(echo.HeaderAllow)
			if werr := c.String(http.StatusNotFound, "Not Found"); werr != nil {
				log.Printf("failed to write not found response: %v", werr)
			}
			return
		}

		e.DefaultHTTPErrorHandler(err, c)
	}
}
