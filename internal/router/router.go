package router

import (
	"blogicum/internal/handlers"
	"blogicum/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	userHandler := handlers.NewUserHandler()

	// Public routes
	r.GET("/", postHandler.Index)                         // published posts, paginated
	r.GET("/category/:slug", postHandler.ByCategory)      // posts in one category
	r.GET("/profile/:username", userHandler.Profile)      // a user's posts
	r.GET("/posts/:post_id", postHandler.Detail)          // post detail + comments

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/create", postHandler.ShowCreate)
		authorized.POST("/posts/create", postHandler.Create)
		authorized.GET("/posts/:post_id/edit", postHandler.ShowEdit)
		authorized.POST("/posts/:post_id/edit", postHandler.Update)
		authorized.POST("/posts/:post_id/delete", postHandler.Delete)

		authorized.POST("/posts/:post_id/comment", commentHandler.Create)
		authorized.GET("/posts/:post_id/comment/:comment_id/edit", commentHandler.ShowEdit)
		authorized.POST("/posts/:post_id/comment/:comment_id/edit", commentHandler.Update)
		authorized.POST("/posts/:post_id/comment/:comment_id/delete", commentHandler.Delete)

		authorized.GET("/settings", userHandler.ShowSettings)
		authorized.POST("/settings", userHandler.UpdateSettings)
	}
}
