package rest

import (
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
)

type postResponse struct {
	ID                 string     `json:"id"`
	Slug               string     `json:"slug"`
	Title              string     `json:"title"`
	Subtitle           string     `json:"subtitle,omitempty"`
	Summary            string     `json:"summary"`
	ContentHTML        string     `json:"contentHtml,omitempty"`
	Author             string     `json:"author"`
	Status             string     `json:"status"`
	IsFeatured         bool       `json:"isFeatured"`
	Views              int64      `json:"views"`
	ReadingTimeMinutes int        `json:"readingTimeMinutes"`
	PublishedAt        *time.Time `json:"publishedAt"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func toPostResponse(p *domain.Post) *postResponse {
	if p == nil {
		return nil
	}
	return &postResponse{
		ID:                 p.ID,
		Slug:               p.Slug,
		Title:              p.Title,
		Subtitle:           p.Subtitle,
		Summary:            p.Summary,
		ContentHTML:        p.ContentHTML,
		Author:             p.Author,
		Status:             string(p.Status),
		IsFeatured:         p.IsFeatured,
		Views:              p.Views,
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		PublishedAt:        p.PublishedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// toPostListing drops the body for list views.
func toPostListing(posts []*domain.Post) []*postResponse {
	out := make([]*postResponse, 0, len(posts))
	for _, p := range posts {
		r := toPostResponse(p)
		r.ContentHTML = ""
		out = append(out, r)
	}
	return out
}

type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentResponses(comments []*domain.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentResponse{
			ID:        c.ID,
			PostID:    c.PostID,
			Author:    c.Author,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}
