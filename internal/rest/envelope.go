package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Responses follow the envelope the frontend already consumes:
// {"success": true, ...} or {"success": false, "error": {"code", "message"}}.

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "error": errorBody{Code: code, Message: message}})
}

// respondDomainError maps service errors onto the HTTP envelope. Validation
// and not-found errors are the caller's to fix; anything else is a storage
// failure, logged here and reported without detail.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrScheduleRequired),
		errors.Is(err, domain.ErrInvalidStatus):
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Post not found")
	case errors.Is(err, domain.ErrCommentNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Comment not found")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "storage failure")
	}
}

// parsePage reads page/limit query parameters. Page starts at 1; limit is
// clamped by the service layer.
func parsePage(c *gin.Context) (domain.Page, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return domain.Page{Limit: limit, Offset: (page - 1) * limit}, page
}

// parseTime parses an optional RFC3339 timestamp field. The empty string
// means absent.
func parseTime(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, false
	}
	return &t, true
}
