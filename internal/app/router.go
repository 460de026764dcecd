package app

import (
	"eduverse_backend/docs"
	"eduverse_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	a.registerUserRoutes(api, c)
	a.registerCourseRoutes(api, c)
	a.registerModuleRoutes(api, c)
	a.registerResourceRoutes(api, c)

	puzzles := api.Group("/puzzles")
	{
		puzzles.GET("", c.puzzle.ListPuzzles)
		puzzles.GET("/:id", c.puzzle.GetPuzzle)
		puzzles.POST("/:id/submit", c.puzzle.SubmitPuzzle)
	}
}

func (a *App) registerUserRoutes(api *gin.RouterGroup, c *controllers) {
	users := api.Group("/users")
	{
		users.POST("", c.user.CreateUser)
		users.GET("", c.user.ListUsers)
		users.GET("/:id", c.user.GetUser)
		users.GET("/:id/badges", c.user.GetUserBadges)
		users.GET("/:id/enrollments", c.user.GetUserEnrollments)
		users.GET("/:id/dashboard", c.dashboard.GetStudentDashboard)
	}

	// 教师视角
	instructors := api.Group("/instructors")
	{
		instructors.GET("/:id/courses", c.course.ListInstructorCourses)
		instructors.GET("/:id/dashboard", c.dashboard.GetInstructorDashboard)
	}
}

func (a *App) registerCourseRoutes(api *gin.RouterGroup, c *controllers) {
	courses := api.Group("/courses")
	{
		courses.POST("", c.course.CreateCourse)
		courses.GET("", c.course.ListCourses)
		courses.GET("/:id", c.course.GetCourse)
		courses.PUT("/:id", c.course.UpdateCourse)
		courses.DELETE("/:id", c.course.DeleteCourse)

		// 模块
		courses.POST("/:id/modules", c.course.CreateModule)
		courses.PUT("/:id/modules/:moduleId", c.course.UpdateModule)
		courses.DELETE("/:id/modules/:moduleId", c.course.DeleteModule)

		// 选课与进度
		courses.POST("/:id/enroll", c.progress.Enroll)
		courses.GET("/:id/enrollments", c.progress.ListCourseEnrollments)
		courses.GET("/:id/progress/export", c.progress.ExportCourseProgress)
		courses.GET("/:id/students/:studentId/progress", c.progress.GetStudentProgress)
		courses.POST("/:id/modules/:moduleId/toggle", c.progress.ToggleModule)
	}
}

func (a *App) registerModuleRoutes(api *gin.RouterGroup, c *controllers) {
	modules := api.Group("/modules/:moduleId")
	{
		modules.GET("/resources", c.resource.ListModuleResources)
		modules.POST("/resources", c.resource.CreateResource)
		modules.POST("/resources/upload", c.content.UploadResource)
		modules.PUT("/resources/reorder", c.resource.ReorderResources)
		modules.GET("/progress", c.progress.GetModuleProgress)

		modules.POST("/assignments", c.content.CreateAssignment)
		modules.GET("/assignments", c.content.ListAssignments)
		modules.POST("/quizzes", c.content.CreateQuiz)
		modules.GET("/quizzes", c.content.ListQuizzes)
	}
}

func (a *App) registerResourceRoutes(api *gin.RouterGroup, c *controllers) {
	resources := api.Group("/resources")
	{
		resources.GET("", c.resource.ListResources)
		resources.GET("/:id", c.resource.GetResource)
		resources.PUT("/:id", c.resource.UpdateResource)
		resources.DELETE("/:id", c.resource.DeleteResource)
		resources.POST("/:id/progress", c.progress.UpdateResourceProgress)
	}

	api.DELETE("/assignments/:id", c.content.DeleteAssignment)
	api.GET("/quizzes/:id", c.content.GetQuiz)
	api.DELETE("/quizzes/:id", c.content.DeleteQuiz)
}
