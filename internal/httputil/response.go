// Package httputil holds response helpers shared by the api and middleware
// packages, which cannot import each other.
package httputil

import "github.com/gin-gonic/gin"

// RespondError writes the standard error envelope and aborts the request.
// Every error in the API has the same shape: a stable machine-readable code,
// a human-readable message, and the request ID when the request ID middleware
// has run.
func RespondError(c *gin.Context, status int, code, message string) {
	var requestID string
	if rid, exists := c.Get("request_id"); exists {
		if s, ok := rid.(string); ok {
			requestID = s
		}
	}

	resp := map[string]string{
		"code":    code,
		"message": message,
	}

	if requestID != "" {
		resp["request_id"] = requestID
	}

	c.AbortWithStatusJSON(status, resp)
}
