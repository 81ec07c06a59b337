package dto

import (
	"io"

	"github.com/google/uuid"
)

// MaterialFile carries the uploaded binary into the service layer without
// binding it to multipart plumbing.
type MaterialFile struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// UploadMaterialRequest is bound from multipart form fields. Exactly one of
// MainTopicID / NewMainTopicName must identify the main topic; the sub topic
// may likewise be an existing id or a proposed new name.
type UploadMaterialRequest struct {
	Title            string     `form:"title" binding:"required,max=255"`
	Description      string     `form:"description" binding:"required"`
	EstimatedMinutes int        `form:"estimated_minutes" binding:"required,min=1"`
	MainTopicID      *uuid.UUID `form:"main_topic_id"`
	NewMainTopicName *string    `form:"new_main_topic_name"`
	SubTopicID       *uuid.UUID `form:"sub_topic_id"`
	NewSubTopicName  *string    `form:"new_sub_topic_name"`
	AudienceIDs      []uint     `form:"audience_ids"`
}

type RejectMaterialRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type MaterialResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	FileURL          string    `json:"file_url"`
	PreviewURL       *string   `json:"preview_url,omitempty"`
	MainTopic        *TopicRef `json:"main_topic,omitempty"`
	SubTopic         *TopicRef `json:"sub_topic,omitempty"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	Status           string    `json:"status"`
	StatusLabel      string    `json:"status_label"`
	Audiences        []string  `json:"audiences,omitempty"`
	Creator          PersonRef `json:"creator"`
	CreatedAtLabel   string    `json:"created_at_label"`
	// PendingTopicStatus surfaces the proposal state for queue rows whose
	// topic is still under moderation.
	PendingTopicStatus *string `json:"pending_topic_status,omitempty"`
	LikeCount          int64   `json:"like_count"`
}

type MaterialFilter struct {
	MainTopicID *uuid.UUID `form:"main_topic_id"`
	SubTopicID  *uuid.UUID `form:"sub_topic_id"`
	Search      string     `form:"search"`
}
