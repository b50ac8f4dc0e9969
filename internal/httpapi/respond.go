package httpapi

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jacentio/stevedore/internal/apierr"
)

// respondError writes the error-body shape every endpoint shares.
func respondError(c *gin.Context, err error) {
	e := apierr.Resolve(err)
	c.JSON(e.Status, gin.H{"Error": e.Message})
}

// acceptsJSON reports whether the client can take a JSON response.
// An absent Accept header counts as accepting anything.
func acceptsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	if accept == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mediaType {
		case "*/*", "application/*", "application/json":
			return true
		}
	}
	return false
}

// isJSONContent reports whether the request body is declared as JSON.
func isJSONContent(c *gin.Context) bool {
	return c.ContentType() == "application/json"
}

// parseID parses a numeric path id. Anything non-numeric behaves like an
// id that does not exist.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
