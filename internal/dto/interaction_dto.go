package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=400"`
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	Author    PersonRef `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type LikeToggleResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}
