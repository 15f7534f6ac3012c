package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prezentenergy/caasweb/internal/pkg/response"
)

// BodyLimit rejects request bodies larger than maxBytes. Zero or less disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Fail(c, http.StatusRequestEntityTooLarge, "request body too large (max "+formatBodyLimit(maxBytes)+")")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func formatBodyLimit(bytes int64) string {
	const kb = 1024
	const mb = 1024 * kb
	if bytes >= mb {
		return strconv.FormatInt(bytes/mb, 10) + "MB"
	}
	value := bytes / kb
	if value <= 0 {
		value = 1
	}
	return strconv.FormatInt(value, 10) + "KB"
}
