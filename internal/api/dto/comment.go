package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/database/models"
)

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
}

func NewCommentResponse(c *models.TaskComment) CommentResponse {
	var author string
	if c.Author != nil {
		author = c.Author.DisplayName()
	}
	return CommentResponse{ID: c.ID, CreatedAt: c.CreatedAt, Author: author, Content: c.Content}
}

func NewCommentResponses(cs []models.TaskComment) []CommentResponse {
	out := make([]CommentResponse, len(cs))
	for i := range cs {
		out[i] = NewCommentResponse(&cs[i])
	}
	return out
}
