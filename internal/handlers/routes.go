package handlers

import (
	"userapi/internal/middleware"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes mounts every endpoint on e. Each API route is guarded by the
// capability its operation maps to.
func RegisterRoutes(e *echo.Echo, auth *middleware.TokenAuthMiddleware, users *UserHandlers, reports *ReportHandlers, health *HealthHandlers) {
	// Health endpoints (no auth required)
	e.GET("/health", health.HealthCheck)
	e.GET("/health/ready", health.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	user := e.Group("/user")
	user.POST("", users.SignUp, auth.RequireCapability(middleware.OpUserCreate))
	user.POST("/login", users.Login, auth.RequireCapability(middleware.OpUserLogin))
	user.GET("", users.ListUsers, auth.RequireCapability(middleware.OpUserList))
	user.GET("/:id", users.GetUser, auth.RequireCapability(middleware.OpUserRetrieve))
	user.PUT("/:id", users.UpdateUser, auth.RequireCapability(middleware.OpUserUpdate))
	user.DELETE("/:id", users.DeleteUser, auth.RequireCapability(middleware.OpUserDelete))

	report := e.Group("/activityReport")
	report.GET("/day", reports.Day, auth.RequireCapability(middleware.OpReportDay))
	report.GET("/month", reports.Month, auth.RequireCapability(middleware.OpReportMonth))
}
