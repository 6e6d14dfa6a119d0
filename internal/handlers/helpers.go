package handlers

import (
	"github.com/gin-gonic/gin"
)

// queryParam reads a search query from the POSTed form, falling back to the
// URL query string. The first non-empty key wins.
func queryParam(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if v, ok := c.GetPostForm(key); ok && v != "" {
			return v
		}
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}
