package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// BodyLimit returns middleware that caps the request body size. The limit is
// given as a human-readable string ("1M", "512K", "2G"); a bare number means
// bytes. Requests over the cap are answered with HTTP 413.
func BodyLimit(limit string) echo.MiddlewareFunc {
	limitBytes := parseLimit(limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			// Content-Length lets us reject without reading anything.
			if req.ContentLength > limitBytes {
				return errBodyTooLarge(limitBytes)
			}

			// The capped reader still enforces the limit for chunked
			// uploads and lying Content-Length headers.
			req.Body = &cappedBody{ReadCloser: req.Body, limit: limitBytes}
			return next(c)
		}
	}
}

func errBodyTooLarge(limit int64) error {
	return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("request body exceeds maximum allowed size of %d bytes", limit))
}

// cappedBody counts bytes as they are read and fails once the count passes
// the limit.
type cappedBody struct {
	io.ReadCloser
	limit    int64
	consumed int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.consumed > b.limit {
		return 0, errBodyTooLarge(b.limit)
	}

	// Read one byte past the limit so an overflow is observable.
	if allowed := b.limit - b.consumed + 1; int64(len(p)) > allowed {
		p = p[:allowed]
	}

	n, err := b.ReadCloser.Read(p)
	b.consumed += int64(n)
	if b.consumed > b.limit {
		return 0, errBodyTooLarge(b.limit)
	}
	return n, err
}

var sizeSuffixes = []struct {
	suffix     string
	multiplier int64
}{
	{"GB", 1 << 30},
	{"G", 1 << 30},
	{"MB", 1 << 20},
	{"M", 1 << 20},
	{"KB", 1 << 10},
	{"K", 1 << 10},
}

// parseLimit converts a size string into bytes, falling back to 1 MB when
// the input is empty or malformed.
func parseLimit(s string) int64 {
	const fallback = 1 << 20

	s = strings.ToUpper(strings.TrimSpace(s))
	var multiplier int64 = 1
	for _, candidate := range sizeSuffixes {
		if rest, ok := strings.CutSuffix(s, candidate.suffix); ok {
			s, multiplier = rest, candidate.multiplier
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return n * multiplier
}
