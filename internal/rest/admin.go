package rest

import (
	"net/http"

	"github.com/blogcafe/blogcafe/blog/application"
	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the moderation surface. Every route here bypasses the
// public visibility filter; the router guards the group with the admin
// capability token.
type AdminHandler struct {
	posts   *application.PostService
	sweeper *application.Sweeper
}

func NewAdminHandler(posts *application.PostService, sweeper *application.Sweeper) *AdminHandler {
	return &AdminHandler{posts: posts, sweeper: sweeper}
}

// ListScheduled shows posts waiting on the sweeper.
func (h *AdminHandler) ListScheduled(c *gin.Context) {
	h.listByStatus(c, domain.StatusScheduled)
}

// ListAll shows every post regardless of status; an optional status query
// narrows it.
func (h *AdminHandler) ListAll(c *gin.Context) {
	h.listByStatus(c, domain.Status(c.Query("status")))
}

func (h *AdminHandler) listByStatus(c *gin.Context, status domain.Status) {
	pg, page := parsePage(c)

	posts, total, err := h.posts.ListByStatus(c.Request.Context(), status, pg)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toPostListing(posts),
		"meta":    pageMeta{Page: page, Limit: pg.Limit, Total: total},
	})
}

// GetPost fetches any post by id, visible or not.
func (h *AdminHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": toPostResponse(post)})
}

// PublishNow force-publishes a post from the moderation view.
func (h *AdminHandler) PublishNow(c *gin.Context) {
	post, err := h.posts.PublishNow(c.Request.Context(), c.Param("postId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": toPostResponse(post)})
}

type featureRequest struct {
	IsFeatured bool `json:"isFeatured"`
}

func (h *AdminHandler) ToggleFeatured(c *gin.Context) {
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input")
		return
	}

	id := c.Param("postId")
	if err := h.posts.SetFeatured(c.Request.Context(), id, req.IsFeatured); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": gin.H{"id": id, "isFeatured": req.IsFeatured}})
}

// Dashboard reports per-status post counts.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	counts, err := h.posts.Dashboard(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "postCounts": counts})
}

// TriggerSweep runs one sweep tick on demand, for operators draining a
// backlog or verifying the pipeline.
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	result, err := h.sweeper.Tick(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
