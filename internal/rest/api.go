package rest

import (
	"net/http"

	"github.com/blogcafe/blogcafe/internal/middleware"
	"github.com/blogcafe/blogcafe/internal/telemetry"
	"github.com/blogcafe/blogcafe/shared/config"
	"github.com/gin-gonic/gin"
)

// NewApi wires all route groups. Public groups serve only visible posts;
// authored and admin groups are gated by capability tokens and bypass the
// visibility filter where noted on the handlers.
func NewApi(router *gin.Engine, cfg *config.Configuration, posts *PostsHandler, comments *CommentsHandler, favorites *FavoritesHandler, admin *AdminHandler) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "BlogCafe server is running, server health is green"})
	})
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	api := router.Group("/api")

	api.GET("/home", posts.Home)
	api.GET("/search", posts.Search)

	postsGroup := api.Group("/posts")
	{
		postsGroup.GET("/", posts.GetPosts)
		postsGroup.GET("/:slug", posts.GetPost)
	}

	authored := api.Group("/posts", middleware.RequireToken(cfg.Auth.AuthorToken))
	{
		authored.POST("/", posts.CreatePost)
		authored.PATCH("/id/:postId", posts.UpdatePost)
		authored.DELETE("/id/:postId", posts.DeletePost)
		authored.POST("/id/:postId/publish", posts.PublishPost)
		authored.POST("/id/:postId/favorite", favorites.ToggleFavorite)
	}

	commentsGroup := api.Group("/comments")
	{
		commentsGroup.GET("/:postId", comments.GetComments)
		commentsGroup.POST("/", middleware.RequireToken(cfg.Auth.AuthorToken), comments.PostComment)
	}

	me := api.Group("/me", middleware.RequireToken(cfg.Auth.AuthorToken))
	{
		me.GET("/favorites", favorites.ListFavorites)
	}

	adminGroup := api.Group("/admin", middleware.RequireToken(cfg.Auth.AdminToken))
	{
		adminGroup.GET("/posts", admin.ListAll)
		adminGroup.GET("/posts/scheduled", admin.ListScheduled)
		adminGroup.GET("/posts/id/:postId", admin.GetPost)
		adminGroup.POST("/posts/id/:postId/publish", admin.PublishNow)
		adminGroup.POST("/posts/id/:postId/feature", admin.ToggleFeatured)
		adminGroup.DELETE("/comments/:commentId", comments.DeleteComment)
		adminGroup.GET("/dashboard", admin.Dashboard)
		adminGroup.POST("/sweep", admin.TriggerSweep)
	}
}
