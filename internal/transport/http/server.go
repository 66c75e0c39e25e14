package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "gopherblog/internal/app"
	"gopherblog/internal/bootstrap"
	"gopherblog/internal/cache"
	"gopherblog/internal/platform/rabbitmq"
	"gopherblog/internal/repository"
	"gopherblog/internal/transport/http/handler"
	"gopherblog/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/health", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	blogRepo := repository.NewBlogRepository(app.MySQL)
	commentRepo := repository.NewCommentRepository(app.MySQL)
	activityRepo := repository.NewActivityRepository(app.MySQL)

	blogCache := cache.NewBlogCache(
		app.Redis,
		time.Duration(app.Config.Redis.FeaturedTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.CategoriesTTLSeconds)*time.Second,
	)
	activityPublisher := rabbitmq.NewActivityPublisher(app.MQConn, app.Config.RabbitMQ.ActivityQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireHour)*time.Hour,
	)
	blogService := appsvc.NewBlogService(blogRepo, userRepo, blogCache, activityPublisher)
	commentService := appsvc.NewCommentService(commentRepo, blogRepo, activityPublisher)

	authHandler := handler.NewAuthHandler(authService)
	blogHandler := handler.NewBlogHandler(blogService)
	commentHandler := handler.NewCommentHandler(commentService)
	activityHandler := handler.NewActivityHandler(activityRepo)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.GET("/security-question/:email", authHandler.GetSecurityQuestion)
	authGroup.GET("/profile", authJWT, authHandler.GetProfile)
	authGroup.PUT("/profile", authJWT, authHandler.UpdateProfile)
	authGroup.PATCH("/change-password", authJWT, authHandler.ChangePassword)

	blogGroup := api.Group("/blogs")
	blogGroup.GET("", blogHandler.List)
	blogGroup.GET("/search", blogHandler.Search)
	blogGroup.GET("/categories", blogHandler.ListCategories)
	blogGroup.GET("/featured", blogHandler.ListFeatured)
	blogGroup.GET("/category/:category", blogHandler.ListByCategory)
	blogGroup.GET("/author/:authorId", blogHandler.ListByAuthor)
	blogGroup.GET("/:identifier", blogHandler.Get)
	blogGroup.POST("", authJWT, blogHandler.Create)
	blogGroup.PUT("/:identifier", authJWT, blogHandler.Update)
	blogGroup.DELETE("/:identifier", authJWT, blogHandler.Delete)
	blogGroup.GET("/:identifier/comments", commentHandler.ListByBlog)
	blogGroup.POST("/:identifier/comments", authJWT, commentHandler.Create)

	api.DELETE("/comments/:id", authJWT, commentHandler.Delete)
	api.GET("/activities", authJWT, activityHandler.ListRecent)

	return router
}
