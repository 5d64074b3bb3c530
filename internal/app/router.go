package app

import (
	"snaketests_backend/docs"
	"snaketests_backend/internal/middleware"
	"snaketests_backend/pkg/monitoring"
	"snaketests_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 1. 页面路由
	a.registerPageRoutes(router, c)

	// 2. REST 资源
	a.registerAPIRoutes(router, c)

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c)
}

func (a *App) registerPageRoutes(router *gin.Engine, c *controllers) {
	auth := a.services.auth
	cookie := a.Config.Session.CookieName
	authLimiter := security.RateLimiter(a.Config.RateLimit.AuthMaxRequests, time.Duration(a.Config.RateLimit.WindowMinutes)*time.Minute)

	// 可选认证：匿名可访问，登录后附带用户信息
	public := router.Group("/")
	public.Use(middleware.TryAuthMiddleware(auth, cookie))
	{
		public.GET("/", c.home.Home)
		public.GET("/home", c.home.Home)
		public.GET("/quizzes/", c.quiz.ListQuizzes)

		public.POST("/auth/register", authLimiter, c.auth.Register)
		public.POST("/auth/login", authLimiter, c.auth.Login)
		public.GET("/auth/logout", c.auth.Logout)
		public.POST("/auth/request_reset", authLimiter, c.auth.RequestReset)
		public.GET("/auth/reset_password/:token", c.auth.CheckResetToken)
		public.POST("/auth/reset_password/:token", authLimiter, c.auth.ResetPassword)
	}

	authorized := router.Group("/")
	authorized.Use(middleware.AuthMiddleware(auth, cookie))
	{
		authorized.GET("/auth/profile", c.auth.GetProfile)
		authorized.POST("/auth/profile", c.auth.UpdateProfile)

		// 帖子
		authorized.GET("/posts", c.post.ListPosts)
		authorized.GET("/posts/create", c.post.CreateForm)
		authorized.POST("/posts/create", c.post.CreatePost)
		authorized.GET("/posts/:uuid", c.post.GetPost)
		authorized.POST("/posts/:uuid", c.post.UpdatePost)
		authorized.POST("/posts/delete/:uuid", c.post.DeletePost)

		// 答题流程
		quizzes := authorized.Group("/quizzes/:uuid")
		{
			quizzes.GET("", c.quiz.GetQuiz)
			quizzes.POST("/results/", c.quiz.StartAttempt)
			quizzes.GET("/results/:result_uuid/questions/", c.quiz.CurrentQuestion)
			quizzes.POST("/results/:result_uuid/questions/", c.quiz.SubmitAnswer)
			quizzes.GET("/results/:result_uuid/details", c.quiz.ResultDetails)
		}
	}
}

func (a *App) registerAPIRoutes(router *gin.Engine, c *controllers) {
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(a.services.auth, a.Config.Session.CookieName))
	{
		users := api.Group("/users")
		{
			users.GET("/", c.userAPI.List)
			users.POST("/", c.userAPI.Create)
			users.GET("/:uuid", c.userAPI.Get)
			users.PUT("/:uuid", c.userAPI.Replace)
			users.PATCH("/:uuid", c.userAPI.Patch)
			users.DELETE("/:uuid", c.userAPI.Delete)
		}

		posts := api.Group("/posts")
		{
			posts.GET("/", c.postAPI.List)
			posts.POST("/", c.postAPI.Create)
			posts.GET("/:uuid", c.postAPI.Get)
			posts.PUT("/:uuid", c.postAPI.Replace)
			posts.PATCH("/:uuid", c.postAPI.Patch)
			posts.DELETE("/:uuid", c.postAPI.Delete)
		}
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.services.auth, a.Config.Session.CookieName), middleware.AdminMiddleware())
	{
		admin.GET("/users", c.admin.ListUsers)
		admin.PUT("/users/:uuid/superuser", c.admin.SetSuperuser)
		admin.DELETE("/users/:uuid", c.admin.DeleteUser)

		admin.POST("/quizzes", c.admin.CreateQuiz)
		admin.GET("/quizzes/:uuid", c.admin.GetQuiz)
		admin.PATCH("/quizzes/:uuid", c.admin.UpdateQuiz)
		admin.DELETE("/quizzes/:uuid", c.admin.DeleteQuiz)
		admin.POST("/quizzes/:uuid/questions", c.admin.AddQuestion)
		admin.PUT("/quizzes/:uuid/questions/:id/position", c.admin.MoveQuestion)
		admin.PUT("/quizzes/:uuid/questions/:id/options", c.admin.SetOptions)
		admin.DELETE("/quizzes/:uuid/questions/:id", c.admin.RemoveQuestion)

		admin.GET("/results", c.admin.ListResults)
	}
}
