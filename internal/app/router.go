package app

import (
	"studytest_backend/docs"
	"studytest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	registerAPIRoutes(api, c)
}

// registerAPIRoutes 业务路由
func registerAPIRoutes(api *gin.RouterGroup, c *controllers) {
	// 1. 试卷
	tests := api.Group("/tests")
	{
		tests.GET("", c.test.ListTests)
		tests.POST("", c.test.CreateTest)
		tests.POST("/generate", c.imports.GenerateTest)
		tests.GET("/:id", c.test.GetTest)
		tests.PUT("/:id", c.test.UpdateTest)
		tests.DELETE("/:id", c.test.DeleteTest)
		tests.PUT("/:id/questions/:index", c.test.ReplaceQuestion)
		tests.POST("/:id/attempts", c.attempt.StartAttempt)
	}

	// 2. 批量导入
	imports := api.Group("/imports")
	{
		imports.POST("", c.imports.Import)
		imports.POST("/parse", c.imports.PreviewImport)
		imports.GET("/archive", c.imports.GetArchivedImport)
	}

	// 3. 答题会话
	live := api.Group("/attempts/live/:sid")
	{
		live.GET("", c.attempt.GetLiveAttempt)
		live.DELETE("", c.attempt.Abandon)
		live.POST("/select", c.attempt.Select)
		live.POST("/navigate", c.attempt.Navigate)
		live.POST("/clear", c.attempt.ClearAnswer)
		live.POST("/mark", c.attempt.ToggleMark)
		live.POST("/submit", c.attempt.Submit)
	}

	// 4. 答题记录
	attempts := api.Group("/attempts")
	{
		attempts.GET("", c.attempt.ListAttempts)
		attempts.GET("/:id", c.attempt.GetAttempt)
		attempts.DELETE("/:id", c.attempt.DeleteAttempt)
		attempts.POST("/:id/retry", c.attempt.RetryAttempt)
	}
}
