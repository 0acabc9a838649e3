package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// maxHeaderValueSize caps any single header value at 8KB.
const maxHeaderValueSize = 8192

var (
	// sqlProbe matches the classic injection probes. Matches are logged,
	// not blocked: every query here is parameterized, so a hit is a scanner
	// fingerprint rather than a live threat.
	sqlProbe = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1|1\s*=\s*1)`)

	// scriptProbe matches markup that has no business in a query string.
	scriptProbe = regexp.MustCompile(`(?i)(<script|javascript\s*:|on\w+\s*=)`)
)

// Sanitize returns request-hygiene middleware: traversal sequences and null
// bytes in the path, CRLF or oversized header values, and script fragments in
// query parameters are all rejected with a 400 before a handler runs.
func Sanitize() echo.MiddlewareFunc {
	return SanitizeWithLogger(zerolog.Nop())
}

// SanitizeWithLogger is Sanitize with a logger attached for the non-blocking
// SQL probe warnings.
func SanitizeWithLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if err := checkPath(req.URL.Path, req.URL.RawPath); err != nil {
				return err
			}
			if err := checkHeaders(req.Header); err != nil {
				return err
			}
			if err := checkQuery(c, logger); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func checkPath(path, rawPath string) error {
	if rawPath == "" {
		rawPath = path
	}
	if hasTraversal(path) || hasTraversal(rawPath) {
		return echo.NewHTTPError(http.StatusBadRequest, "path traversal detected")
	}
	if hasNullByte(path) || hasNullByte(rawPath) {
		return echo.NewHTTPError(http.StatusBadRequest, "null byte injection detected")
	}
	return nil
}

func checkHeaders(headers http.Header) error {
	for name, values := range headers {
		for _, v := range values {
			if len(v) > maxHeaderValueSize {
				return echo.NewHTTPError(http.StatusBadRequest, "header value exceeds maximum size: "+name)
			}
			if strings.ContainsAny(v, "\r\n") {
				return echo.NewHTTPError(http.StatusBadRequest, "header injection detected: "+name)
			}
		}
	}
	return nil
}

func checkQuery(c echo.Context, logger zerolog.Logger) error {
	for key, values := range c.Request().URL.Query() {
		if hasNullByte(key) {
			return echo.NewHTTPError(http.StatusBadRequest, "null byte injection detected in query parameter")
		}
		if scriptProbe.MatchString(key) {
			return echo.NewHTTPError(http.StatusBadRequest, "script injection detected in query parameter")
		}
		for _, v := range values {
			if hasNullByte(v) {
				return echo.NewHTTPError(http.StatusBadRequest, "null byte injection detected in query parameter")
			}
			if scriptProbe.MatchString(v) {
				return echo.NewHTTPError(http.StatusBadRequest, "script injection detected in query parameter")
			}
			if sqlProbe.MatchString(v) {
				logger.Warn().
					Str("param", key).
					Str("path", c.Request().URL.Path).
					Str("remote_ip", c.RealIP()).
					Msg("potential SQL injection pattern detected in query parameter")
			}
		}
	}
	return nil
}

// hasTraversal reports dot-dot sequences in raw, encoded, and double-encoded
// form.
func hasTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

func hasNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}

// SanitizeString strips null bytes and control characters (keeping newline,
// carriage return, and tab) and trims surrounding whitespace. Handlers can
// run free-text fields through it before storage.
func SanitizeString(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == '\x00' {
			continue
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
