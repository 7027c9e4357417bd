package handlers

import (
	"net/http"

	intconfig "eticket/internal/config"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and which optional backends are wired.
func (g *Gateway) Health(c *gin.Context) {
	ledger := "disabled"
	if g.Ledger != nil {
		ledger = "enabled"
		if db := intconfig.DB; db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				ledger = "unreachable"
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "booking gateway running",
		"ledger":   ledger,
		"checkout": g.Checkout.Available(),
		"sessions": g.Store.Len(),
	})
}
