package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litebittech/cex/services/dlob/internal/apierr"
)

// respondError maps an error to its HTTP response. A plain error (from
// query parsing/market resolution) is treated as ClientValidation; an
// *apierr.Error carries its own Kind/Status, per spec.md §7's propagation
// policy.
func respondError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		if ae.Kind == apierr.Internal {
			c.JSON(ae.Status, gin.H{"error": ae.Message})
			return
		}
		c.JSON(ae.Status, gin.H{"error": ae.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
