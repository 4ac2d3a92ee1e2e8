package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

type orderHandler struct {
	orders OrderService
}

func (h *orderHandler) Create(c *gin.Context) {
	var in anchor.Order
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *orderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
