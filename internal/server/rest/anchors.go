package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/server/services"
)

type anchorHandler struct {
	anchors AnchorService
}

func (h *anchorHandler) List(c *gin.Context) {
	list, err := h.anchors.List(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"anchors": list})
}

func (h *anchorHandler) Create(c *gin.Context) {
	var in services.NewAnchor
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.anchors.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *anchorHandler) Get(c *gin.Context) {
	a, err := h.anchors.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *anchorHandler) History(c *gin.Context) {
	events, err := h.anchors.History(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *anchorHandler) Burn(c *gin.Context) {
	if err := h.anchors.Burn(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *anchorHandler) Reinforce(c *gin.Context) {
	var in struct {
		ReinforcedSigilSVG string `json:"reinforcedSigilSvg" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.anchors.Reinforce(c.Request.Context(), userID(c), c.Param("id"), in.ReinforcedSigilSVG)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *anchorHandler) SetEnhancedImage(c *gin.Context) {
	var in struct {
		EnhancedImageURL string `json:"enhancedImageUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.anchors.SetEnhancedImage(c.Request.Context(), userID(c), c.Param("id"), in.EnhancedImageURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Charge defaults durationSeconds to the nominal length of the charge type.
func (h *anchorHandler) Charge(c *gin.Context) {
	var in anchor.Charge
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.DurationSeconds == 0 {
		in.DurationSeconds = anchor.QuickChargeSeconds
		if in.ChargeType == anchor.ChargeInitialDeep {
			in.DurationSeconds = anchor.DeepChargeSeconds
		}
	}
	a, err := h.anchors.Charge(c.Request.Context(), userID(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *anchorHandler) Activate(c *gin.Context) {
	var in anchor.Activation
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.DurationSeconds == 0 {
		in.DurationSeconds = anchor.ActivationSeconds
	}
	a, err := h.anchors.Activate(c.Request.Context(), userID(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
