package security

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ValidateContentType ensures the request has an accepted content type
func ValidateContentType(contentType string) bool {
	// Strip charset and boundary parameters before matching
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))

	validTypes := map[string]bool{
		"application/json":                  true,
		"application/x-www-form-urlencoded": true,
		"multipart/form-data":               true,
	}
	return validTypes[contentType]
}

// SanitizeHeaders removes sensitive headers before they reach any log
func SanitizeHeaders(headers http.Header) http.Header {
	sensitiveHeaders := []string{
		"Authorization",
		"Cookie",
		"Set-Cookie",
		"X-CSRF-Token",
	}

	sanitized := headers.Clone()
	for _, header := range sensitiveHeaders {
		sanitized.Del(header)
	}
	return sanitized
}

// EnforceContentType rejects body-carrying requests with unexpected content
// types before they reach any handler.
func EnforceContentType() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
				return next(c)
			}
			if c.Request().ContentLength == 0 {
				return next(c)
			}

			if !ValidateContentType(c.Request().Header.Get(echo.HeaderContentType)) {
				log.Printf("Rejected %s %s with content type %q, headers: %v",
					method, c.Path(), c.Request().Header.Get(echo.HeaderContentType),
					SanitizeHeaders(c.Request().Header))
				return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Unsupported content type")
			}
			return next(c)
		}
	}
}
