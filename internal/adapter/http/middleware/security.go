package middleware

import (
	"net/http"
	"strings"

	"github.com/gnosis118/paper-n-print-sub000/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errBodyTooLarge     = pkg.NewDomainErrorSimple("REQUEST_TOO_LARGE", "Request body too large", http.StatusBadRequest)
	errOriginNotAllowed = pkg.NewDomainErrorSimple("ORIGIN_NOT_ALLOWED", "Origin not allowed", http.StatusForbidden)
	errMissingUserAgent = pkg.NewDomainErrorSimple("MISSING_USER_AGENT", "User-Agent header is required", http.StatusBadRequest)
)

// BodySizeLimit caps the request body before handlers read it. Oversized
// requests fail with 400 and never reach business logic.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(errBodyTooLarge.HTTPStatus, errBodyTooLarge.ToHTTPError())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// OriginAllowList rejects browser requests whose Origin is not in the
// configured list. Requests without an Origin header (server-to-server,
// webhooks, curl) pass through; an empty list disables the check.
func OriginAllowList(allowed []string) gin.HandlerFunc {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(strings.TrimSuffix(o, "/"))
		if o != "" {
			set[strings.ToLower(o)] = true
		}
	}

	return func(c *gin.Context) {
		origin := strings.ToLower(strings.TrimSuffix(c.GetHeader("Origin"), "/"))
		if origin == "" || len(set) == 0 || set[origin] {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(errOriginNotAllowed.HTTPStatus, errOriginNotAllowed.ToHTTPError())
	}
}

// RequireUserAgent rejects requests that do not identify a client at all.
func RequireUserAgent() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("User-Agent")) == "" {
			c.AbortWithStatusJSON(errMissingUserAgent.HTTPStatus, errMissingUserAgent.ToHTTPError())
			return
		}
		c.Next()
	}
}
