package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Elements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"elements": h.Services.Catalog.Elements()})
}

// Element returns one element (by id or slug) with its missions.
func (h *Handler) Element(c *gin.Context) {
	el, ok := h.Services.Catalog.Element(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "element not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"element":  el,
		"missions": h.Services.Catalog.Missions(el.ID),
	})
}
