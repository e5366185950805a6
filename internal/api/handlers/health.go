package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness plus whether initialization has finished.
func (h *Handlers) Health(c *gin.Context) {
	ready := h.ready.Get() != nil
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"ready":  ready,
	})
}
