package router

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/handler"
)

const sessionName = "habitlog_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	secret := strings.TrimSpace(sessionSecret)
	if secret == "" {
		secret = "habitlog-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 30, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)

	// 需要认证的 API 路由
	apiGroup := r.Group("/api")
	apiGroup.Use(api.AuthRequired())
	{
		apiGroup.GET("/document", api.GetDocumentMeta)

		apiGroup.GET("/habits", api.ListHabits)
		apiGroup.POST("/habits", api.CreateHabit)
		apiGroup.GET("/habits/:id", api.GetHabit)
		apiGroup.PUT("/habits/:id", api.UpdateHabit)
		apiGroup.POST("/habits/:id/archive", api.ToggleArchiveHabit)
		apiGroup.GET("/habits/:id/stats", api.GetHabitStats)

		apiGroup.GET("/days/:date", api.GetDay)
		apiGroup.PUT("/days/:date/habits/:id", api.SetEntry)
		apiGroup.POST("/days/:date/mark-all", api.MarkAll)

		apiGroup.GET("/stats", api.GetStats)
		apiGroup.GET("/heatmap", api.GetHeatmap)
		apiGroup.PUT("/session/selection", api.UpdateSelection)

		apiGroup.GET("/export/json", api.ExportJSON)
		apiGroup.GET("/export/csv", api.ExportCSV)
		apiGroup.GET("/export/xlsx", api.ExportXLSX)
		apiGroup.POST("/import", api.Import)
	}

	return r
}
