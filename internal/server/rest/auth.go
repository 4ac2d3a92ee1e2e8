package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type authHandler struct {
	users UserService
}

func (h *authHandler) Register(c *gin.Context) {
	var in struct {
		Username        string `json:"username" binding:"required"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.users.RegisterWithPassword(c.Request.Context(), in.Username, in.Password, in.ConfirmPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pair)
}

func (h *authHandler) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.users.LoginWithPassword(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *authHandler) Refresh(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.users.RefreshToken(c.Request.Context(), in.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
