package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like/Comment targets.
const (
	TargetMaterial  = "material"
	TargetMainTopic = "main_topic"
)

// CommentMaxLen caps comment bodies.
const CommentMaxLen = 400

// Like is unique per (user, target); toggling inserts or deletes the row.
type Like struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_user_target" json:"user_id"`
	TargetType string    `gorm:"size:20;not null;uniqueIndex:idx_like_user_target" json:"target_type"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_user_target" json:"target_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Comment is append-only free text on a material or main topic.
type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User       User      `json:"user"`
	TargetType string    `gorm:"size:20;not null;index:idx_comment_target" json:"target_type"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_target" json:"target_id"`
	Body       string    `gorm:"size:400;not null" json:"body"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
