package rest

import (
	"net/http"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
				return auth.CheckPasswordPolicy(fl.Field().String()) == nil
			})
		}
	})
}

// Handler builds the gin engine with middleware and routes.
func (s *HTTPServer) Handler() http.Handler {
	registerValidators()

	router := gin.New()
	router.Use(s.recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.opts.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Retry-After"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", s.signUp)
			authRoutes.POST("/signin", s.signIn)
			authRoutes.POST("/signout", s.signOut)
			authRoutes.GET("/session", s.authenticate(), s.session)
		}

		taskRoutes := api.Group("/tasks")
		taskRoutes.Use(s.authenticate())
		{
			taskRoutes.GET("", s.listTasks)
			taskRoutes.POST("", s.createTask)
			taskRoutes.GET("/:id", s.getTask)
			taskRoutes.PUT("/:id", s.updateTask)
			taskRoutes.DELETE("/:id", s.deleteTask)
			taskRoutes.PATCH("/:id/complete", s.toggleTask)
		}
	}

	return router
}
