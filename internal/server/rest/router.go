package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/anchor/internal/logging"
)

// NewRouter wires every route. Everything under /api except /api/auth
// requires a Bearer access token.
func NewRouter(s Services, l logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(l))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	api := r.Group("/api")

	ah := &authHandler{users: s.Users}
	auth := api.Group("/auth")
	{
		auth.POST("/register", ah.Register)
		auth.POST("/login", ah.Login)
		auth.POST("/refresh", ah.Refresh)
	}

	secured := api.Group("")
	secured.Use(JWTAuth(s.Users))

	anh := &anchorHandler{anchors: s.Anchors}
	anchors := secured.Group("/anchors")
	{
		anchors.GET("", anh.List)
		anchors.POST("", anh.Create)
		anchors.GET("/:id", anh.Get)
		anchors.DELETE("/:id", anh.Burn)
		anchors.GET("/:id/history", anh.History)
		anchors.PUT("/:id/reinforced", anh.Reinforce)
		anchors.PUT("/:id/enhanced", anh.SetEnhancedImage)
		anchors.POST("/:id/charge", anh.Charge)
		anchors.POST("/:id/activate", anh.Activate)
	}

	oh := &orderHandler{orders: s.Orders}
	secured.POST("/orders", oh.Create)
	secured.GET("/orders/:id", oh.Get)

	aih := &aiHandler{enhance: s.Enhance, analyzer: s.Analyzer}
	ai := secured.Group("/ai")
	{
		ai.GET("/styles", aih.Styles)
		ai.POST("/analyze", aih.Analyze)
		ai.POST("/variations", aih.Variations)
		ai.POST("/enhance", aih.Enhance)
		ai.POST("/preprocess", aih.Preprocess)
		ai.POST("/structure-match", aih.StructureMatch)
		ai.POST("/composite", aih.Composite)
	}

	return r
}
