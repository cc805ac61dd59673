package app

import (
	"onlinecourse_backend/docs"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/controller"
	"onlinecourse_backend/internal/middleware"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共接口(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 学员接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerLearnerRoutes(authGroup, c)
	}

	// 3. 教师及管理员接口
	a.registerAdminRoutes(router, c, cfg)

	// 4. 页面
	a.registerWebRoutes(router, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/courses", middleware.TryAuthMiddleware(cfg), c.course.ListCourses)
		public.GET("/courses/search", c.course.SearchCourses)
		public.GET("/courses/:id", middleware.TryAuthMiddleware(cfg), c.course.GetCourse)
	}
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)
	group.GET("/my/enrollments", c.course.MyEnrollments)

	group.POST("/courses/:id/enroll", c.course.Enroll)
	group.POST("/courses/:id/submissions", c.exam.Submit)
	group.GET("/courses/:id/submissions/:submissionId", c.exam.GetResult)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleInstructor))
	{
		admin.POST("/courses", c.admin.CreateCourse)
		admin.PUT("/courses/:id", c.admin.UpdateCourse)
		admin.POST("/courses/:id/lessons", c.admin.AddLesson)
		admin.POST("/courses/:id/questions", c.admin.AddQuestion)
		admin.POST("/courses/:id/image", c.admin.UploadImage)
		admin.POST("/courses/:id/instructors", c.admin.AssignInstructor)
		admin.GET("/courses/:id/submissions", c.admin.ListSubmissions)
		admin.POST("/courses/:id/submissions/:submissionId/regrade", c.admin.RegradeSubmission)

		// 仅管理员
		adminOnly := admin.Group("")
		adminOnly.Use(middleware.RoleMiddleware(model.RoleAdmin))
		{
			adminOnly.POST("/enrollments/reconcile", c.admin.ReconcileEnrollments)
			adminOnly.POST("/instructors", c.admin.CreateInstructor)
			adminOnly.POST("/learners", c.admin.CreateLearner)
		}
	}
}

func (a *App) registerWebRoutes(router *gin.Engine, c *controllers) {
	pages := router.Group("/")
	pages.Use(a.sessions.Middleware())
	{
		pages.GET("/", c.web.Index)
		pages.GET("/registration/", c.web.RegistrationPage)
		pages.POST("/registration/", c.web.Register)
		pages.GET("/login/", c.web.LoginPage)
		pages.POST("/login/", c.web.Login)
		pages.GET("/logout/", c.web.Logout)

		pages.GET("/:course_id/", c.web.CourseDetail)
		pages.POST("/:course_id/enroll/", c.web.Enroll)
		pages.POST("/:course_id/submit/", c.web.Submit)
		pages.GET("/:course_id/submission/:submission_id/result/", middleware.RequireLogin(controller.LoginPath), c.web.Result)
	}
}
