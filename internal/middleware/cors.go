package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

const (
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
	corsMaxAge       = "86400"
)

// CORSPolicy resolves cross-origin headers against a fixed allow-list.
type CORSPolicy struct {
	allowed []string
}

// NewCORSPolicy copies origins so later changes by the caller have no effect.
func NewCORSPolicy(origins []string) *CORSPolicy {
	return &CORSPolicy{allowed: slices.Clone(origins)}
}

// Allows reports whether origin is present and allow-listed. Matching is exact.
func (p *CORSPolicy) Allows(origin string) bool {
	return origin != "" && slices.Contains(p.allowed, origin)
}

// Admits decides whether a request may be processed at all. Requests without
// an Origin header come from non-browser clients and are let through.
func (p *CORSPolicy) Admits(origin string) bool {
	return origin == "" || p.Allows(origin)
}

// Headers returns the CORS header set for a request carrying origin.
func (p *CORSPolicy) Headers(origin string) http.Header {
	h := http.Header{}
	p.apply(h, origin)
	return h
}

func (p *CORSPolicy) apply(h http.Header, origin string) {
	h.Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
	h.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)
	h.Set(echo.HeaderAccessControlMaxAge, corsMaxAge)
	if p.Allows(origin) {
		h.Set(echo.HeaderAccessControlAllowOrigin, origin)
		h.Set(echo.HeaderAccessControlAllowCredentials, "true")
		h.Add(echo.HeaderVary, echo.HeaderOrigin)
	}
}

// CORS attaches the policy headers to every response of the wrapped route,
// error responses included.
func CORS(policy *CORSPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			policy.apply(c.Response().Header(), c.Request().Header.Get(echo.HeaderOrigin))
			return next(c)
		}
	}
}

// Preflight answers every OPTIONS request with 204 before routing happens.
// Register it with echo's Pre so it applies to unknown paths too.
func Preflight(policy *CORSPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodOptions {
				return next(c)
			}
			policy.apply(c.Response().Header(), c.Request().Header.Get(echo.HeaderOrigin))
			return c.NoContent(http.StatusNoContent)
		}
	}
}

// OriginGate rejects requests whose Origin is set but not allow-listed. The
// body is left unread.
func OriginGate(policy *CORSPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !policy.Admits(c.Request().Header.Get(echo.HeaderOrigin)) {
				return c.String(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}
