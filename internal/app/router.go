package app

import (
	"course_platform_backend/docs"
	"course_platform_backend/internal/config"
	"course_platform_backend/internal/middleware"
	"course_platform_backend/internal/model"
	"course_platform_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录，课程列表和详情可选登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerLearnerRoutes(authGroup, c)

		// 3. 教师/管理员
		a.registerInstructorRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	public.Use(middleware.TryAuthMiddleware(cfg))
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/search", c.course.SearchCourses)
		public.GET("/courses/:id", c.course.GetCourseDetail)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/my-courses", c.enrollment.MyCourses)

	courses := rg.Group("/courses/:id")
	{
		courses.POST("/enroll", c.enrollment.Enroll)
		courses.GET("/progress", c.enrollment.GetCourseProgress)
		courses.POST("/lessons/:lessonId/complete", c.enrollment.CompleteLesson)

		courses.POST("/exam/start", c.exam.StartExam)
		courses.POST("/submit", c.exam.Submit)
		courses.GET("/submissions/:submissionId", c.exam.GetResult)

		courses.POST("/certificate", c.certificate.Issue)
	}
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Teacher))
	{
		instructor.POST("/lessons/:lessonId/video", c.lesson.UploadVideo)
	}
}
