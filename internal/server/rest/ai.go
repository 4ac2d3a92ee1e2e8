package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/anchor/internal/server/services"
)

type aiHandler struct {
	enhance  EnhanceService
	analyzer Analyzer
}

func (h *aiHandler) Styles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"styles":            h.enhance.Styles(),
		"backendConfigured": h.enhance.BackendConfigured(),
	})
}

func (h *aiHandler) Analyze(c *gin.Context) {
	var in struct {
		Intention string `json:"intention"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.analyzer.AnalyzeIntention(c.Request.Context(), in.Intention)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *aiHandler) Variations(c *gin.Context) {
	var in struct {
		SigilSVG string `json:"sigilSvg"`
		Style    string `json:"style"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	vs, err := h.analyzer.GenerateVariations(c.Request.Context(), in.SigilSVG, in.Style)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variations": vs})
}

func (h *aiHandler) Enhance(c *gin.Context) {
	var in services.EnhanceRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.enhance.Enhance(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *aiHandler) Preprocess(c *gin.Context) {
	var in struct {
		SigilSVG string `json:"sigilSvg" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.enhance.Preprocess(in.SigilSVG)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *aiHandler) StructureMatch(c *gin.Context) {
	var in struct {
		OriginalMask   string `json:"originalMask" binding:"required"`
		GeneratedImage string `json:"generatedImage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.enhance.StructureMatch(in.OriginalMask, in.GeneratedImage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *aiHandler) Composite(c *gin.Context) {
	var in struct {
		OriginalSigil  string `json:"originalSigil" binding:"required"`
		GeneratedImage string `json:"generatedImage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.enhance.Composite(in.OriginalSigil, in.GeneratedImage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
