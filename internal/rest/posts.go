package rest

import (
	"net/http"

	"github.com/blogcafe/blogcafe/blog/application"
	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/blogcafe/blogcafe/internal/middleware"
	"github.com/gin-gonic/gin"
)

type PostsHandler struct {
	posts *application.PostService
}

func NewPostsHandler(posts *application.PostService) *PostsHandler {
	return &PostsHandler{posts: posts}
}

// GetPosts is the public listing. Only visible posts are served.
func (h *PostsHandler) GetPosts(c *gin.Context) {
	pg, page := parsePage(c)

	var (
		posts []*domain.Post
		total int
		err   error
	)
	if author := c.Query("authorId"); author != "" {
		posts, total, err = h.posts.ListByAuthor(c.Request.Context(), author, pg)
	} else {
		posts, total, err = h.posts.ListPublished(c.Request.Context(), pg)
	}
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

// GetPost serves the public single-post view by slug, with neighbours and
// related reading.
func (h *PostsHandler) GetPost(c *gin.Context) {
	view, err := h.posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"post":     toPostResponse(view.Post),
		"previous": toPostResponse(view.Previous),
		"next":     toPostResponse(view.Next),
		"readNext": toPostListing(view.ReadNext),
	})
}

type createPostRequest struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	ContentHTML string `json:"contentHtml"`
	Status      string `json:"status"`
	PublishedAt string `json:"publishedAt"`
}

func (h *PostsHandler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input")
		return
	}

	publishedAt, ok := parseTime(req.PublishedAt)
	if !ok {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid publishedAt")
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), application.CreatePostInput{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		ContentHTML: req.ContentHTML,
		Author:      middleware.UserFrom(c),
		Status:      domain.Status(req.Status),
		PublishedAt: publishedAt,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "post": toPostResponse(post)})
}

type updatePostRequest struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	ContentHTML *string `json:"contentHtml"`
	Status      *string `json:"status"`
	PublishedAt *string `json:"publishedAt"`
}

func (h *PostsHandler) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input")
		return
	}

	in := application.UpdatePostInput{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		ContentHTML: req.ContentHTML,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		in.Status = &status
	}
	if req.PublishedAt != nil {
		publishedAt, ok := parseTime(*req.PublishedAt)
		if !ok {
			respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid publishedAt")
			return
		}
		in.PublishedAt = publishedAt
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), c.Param("postId"), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "post": toPostResponse(post)})
}

func (h *PostsHandler) DeletePost(c *gin.Context) {
	if err := h.posts.DeletePost(c.Request.Context(), c.Param("postId")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PublishPost publishes a draft or scheduled post immediately.
func (h *PostsHandler) PublishPost(c *gin.Context) {
	post, err := h.posts.PublishNow(c.Request.Context(), c.Param("postId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": toPostResponse(post)})
}

// Search matches visible posts against the q query term.
func (h *PostsHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing query")
		return
	}

	pg, page := parsePage(c)
	posts, total, err := h.posts.Search(c.Request.Context(), q, pg)
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

// Home assembles the landing-page sections.
func (h *PostsHandler) Home(c *gin.Context) {
	view, err := h.posts.Home(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	authors := make([]gin.H, 0, len(view.TopAuthors))
	for _, a := range view.TopAuthors {
		authors = append(authors, gin.H{"author": a.Author, "posts": a.Posts})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"featuredPosts": toPostListing(view.Featured),
		"trendingPosts": toPostListing(view.Trending),
		"recentPosts":   toPostListing(view.Recent),
		"topAuthors":    authors,
	})
}
