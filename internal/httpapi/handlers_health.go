package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (d *Deps) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// handleStartup implements spec.md §6: 200 when subscribed ∧
// orderIndex.size>0 ∧ userStats.size>0, else 500 "Not ready".
func (d *Deps) handleStartup(c *gin.Context) {
	subscribed := d.Subscribed != nil && d.Subscribed.Load()
	ready := subscribed && d.Orders.Size() > 0 && d.Stats.Size() > 0
	if !ready {
		c.String(http.StatusInternalServerError, "Not ready")
		return
	}
	c.String(http.StatusOK, "OK")
}
