package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kelibin/secretaria/internal/app/controllers"
	"github.com/kelibin/secretaria/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Students    *controllers.StudentController
	Enrollments *controllers.EnrollmentController
	Auth        *controllers.AuthController
	Accounts    *controllers.AccountController
}

// SetupRouter configures all application routes. The session middleware
// must already be installed on router.
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public routes ---
	router.GET("/cadastro", authMiddleware.RedirectIfLoggedIn(), c.Auth.RegisterForm)
	router.POST("/cadastro", c.Auth.Register)
	router.GET("/login", authMiddleware.RedirectIfLoggedIn(), c.Auth.LoginForm)
	router.POST("/login", c.Auth.Login)
	router.GET("/logout", c.Auth.Logout)

	// --- Authenticated routes ---
	protected := router.Group("")
	protected.Use(authMiddleware.RequireLogin())
	{
		protected.GET("/", c.Students.Home)
		protected.GET("/tabela", c.Students.Table)
		protected.GET("/tabela/exportar", c.Students.Export)

		students := protected.Group("/alunos")
		{
			students.POST("", c.Students.Create)
			students.GET("/:id", c.Students.Show)
			students.GET("/editar/:id", c.Students.EditForm)
			students.POST("/editar/:id", c.Students.Update)
			students.GET("/excluir/:id", c.Students.Delete)
		}

		enrollments := protected.Group("/matriculas")
		{
			enrollments.POST("/:id/concluir", c.Enrollments.Complete)
			enrollments.POST("/:id/cancelar", c.Enrollments.Cancel)
		}

		accounts := protected.Group("/usuarios")
		{
			accounts.GET("", c.Accounts.List)
			accounts.GET("/editar/:id", c.Accounts.EditForm)
			accounts.POST("/editar/:id", c.Accounts.Update)
			accounts.GET("/excluir/:id", c.Accounts.Delete)
		}

		me := protected.Group("/minha-conta")
		{
			me.GET("/detalhes", c.Accounts.Me)
			me.GET("/editar", c.Accounts.MeEditForm)
			me.POST("/editar", c.Accounts.MeUpdate)
		}
	}

	router.NoRoute(middleware.NotFound())
}
