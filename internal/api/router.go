// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/talhaerkul/MutualStory-public/internal/config"
	"github.com/talhaerkul/MutualStory-public/internal/di"
	"github.com/talhaerkul/MutualStory-public/internal/services"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	// 只从容器获取服务，不再创建新实例
	storyService, ok := container.Get("story").(*services.StoryService)
	if !ok {
		return nil, fmt.Errorf("故事服务未正确初始化")
	}

	contentService, ok := container.Get("content").(*services.ContentService)
	if !ok {
		return nil, fmt.Errorf("内容服务未正确初始化")
	}

	draftService, ok := container.Get("draft").(*services.DraftService)
	if !ok {
		return nil, fmt.Errorf("草稿服务未正确初始化")
	}

	assessService, ok := container.Get("assess").(*services.AssessService)
	if !ok {
		return nil, fmt.Errorf("评估服务未正确初始化")
	}

	translateService, ok := container.Get("translate").(*services.TranslateService)
	if !ok {
		return nil, fmt.Errorf("翻译服务未正确初始化")
	}

	handler := NewHandler(
		storyService,
		contentService,
		draftService,
		assessService,
		translateService,
		cfg.Assist,
	)
	workbench := NewWorkbenchHandler(assessService, cfg.Assist)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 启用CORS
	r.Use(corsMiddleware())

	// 所有请求先解析身份
	r.Use(AuthMiddleware())

	// WebSocket 翻译工作台
	r.GET("/ws/workbench/:id", workbench.WorkbenchWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		// 认证
		api.POST("/auth/login", handler.AdminLogin)

		// ===============================
		// 故事相关路由
		// ===============================
		storiesGroup := api.Group("/stories")
		{
			storiesGroup.GET("", handler.GetStories)
			storiesGroup.GET("/search", handler.SearchStories)
			storiesGroup.GET("/favorites", handler.GetFavoriteStories)
			storiesGroup.GET("/:id", handler.GetStory)
			storiesGroup.GET("/:id/translations/:language", handler.GetTranslation)
			storiesGroup.POST("/:id/favorite", handler.ToggleFavorite)

			// 管理端
			storiesGroup.POST("", RequireAdmin(), handler.CreateStory)
			storiesGroup.PUT("/:id", RequireAdmin(), handler.UpdateStory)
			storiesGroup.DELETE("/:id", RequireAdmin(), handler.DeleteStory)

			// 草稿
			draftsGroup := storiesGroup.Group("/:id/drafts")
			{
				draftsGroup.GET("", handler.GetDrafts)
				draftsGroup.POST("", handler.CreateDraft)
				draftsGroup.GET("/:draft_id", handler.GetDraft)
				draftsGroup.DELETE("/:draft_id", handler.DeleteDraft)
			}
		}

		// ===============================
		// 横幅与名言
		// ===============================
		bannersGroup := api.Group("/banners")
		{
			bannersGroup.GET("/active", handler.GetActiveBanner)
			bannersGroup.GET("", RequireAdmin(), handler.GetBanners)
			bannersGroup.POST("", RequireAdmin(), handler.CreateBanner)
			bannersGroup.PUT("/:id", RequireAdmin(), handler.UpdateBanner)
			bannersGroup.POST("/:id/activate", RequireAdmin(), handler.ActivateBanner)
			bannersGroup.DELETE("/:id", RequireAdmin(), handler.DeleteBanner)
		}

		quotesGroup := api.Group("/quotes")
		{
			quotesGroup.GET("/active", handler.GetActiveQuote)
			quotesGroup.GET("", RequireAdmin(), handler.GetQuotes)
			quotesGroup.POST("", RequireAdmin(), handler.CreateQuote)
			quotesGroup.POST("/:id/activate", RequireAdmin(), handler.ActivateQuote)
			quotesGroup.DELETE("/:id", RequireAdmin(), handler.DeleteQuote)
		}

		// ===============================
		// AI辅助
		// ===============================
		assessGroup := api.Group("/assess")
		assessGroup.Use(AssessRateLimit())
		{
			assessGroup.POST("", handler.AssessTranslation)
			assessGroup.POST("/alternatives", handler.GetAlternatives)
			assessGroup.POST("/autocomplete", handler.AutoCompleteTranslation)
		}

		api.POST("/translate", TranslateRateLimit(), handler.TranslateText)
	}

	return r, nil
}

// corsMiddleware 实现跨域资源共享
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
