package rest

import (
	"net/http"

	"github.com/blogcafe/blogcafe/blog/application"
	"github.com/blogcafe/blogcafe/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CommentsHandler struct {
	comments *application.CommentService
}

func NewCommentsHandler(comments *application.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

type postCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

func (h *CommentsHandler) PostComment(c *gin.Context) {
	var req postCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input")
		return
	}
	if req.PostID == "" || req.Content == "" {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "postId and content are required")
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), req.PostID, middleware.UserFrom(c), req.Content)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": commentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Author:    comment.Author,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}})
}

func (h *CommentsHandler) GetComments(c *gin.Context) {
	pg, page := parsePage(c)

	comments, total, err := h.comments.ListComments(c.Request.Context(), c.Param("postId"), pg)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toCommentResponses(comments),
		"meta":    pageMeta{Page: page, Limit: pg.Limit, Total: total},
	})
}

// DeleteComment removes a comment (moderation).
func (h *CommentsHandler) DeleteComment(c *gin.Context) {
	if err := h.comments.DeleteComment(c.Request.Context(), c.Param("commentId")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
