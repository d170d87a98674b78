package rest

import (
	"net/http"

	"github.com/blogcafe/blogcafe/blog/application"
	"github.com/blogcafe/blogcafe/internal/middleware"
	"github.com/gin-gonic/gin"
)

type FavoritesHandler struct {
	favorites *application.FavoriteService
}

func NewFavoritesHandler(favorites *application.FavoriteService) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites}
}

// ToggleFavorite flips the caller's favorite state for a post.
func (h *FavoritesHandler) ToggleFavorite(c *gin.Context) {
	user := middleware.UserFrom(c)
	if user == "" {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing user identity")
		return
	}

	favorited, err := h.favorites.Toggle(c.Request.Context(), user, c.Param("postId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favorited": favorited})
}

// ListFavorites returns the caller's favorited posts that are still visible.
func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	user := middleware.UserFrom(c)
	if user == "" {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing user identity")
		return
	}

	posts, err := h.favorites.List(c.Request.Context(), user)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toPostListing(posts)})
}
