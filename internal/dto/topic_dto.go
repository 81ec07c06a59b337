package dto

import "github.com/google/uuid"

type CreateMainTopicRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type CreateSubTopicRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type CreatePendingTopicRequest struct {
	Name          string     `json:"name" binding:"required,max=100"`
	IsMainTopic   bool       `json:"is_main_topic"`
	ParentTopicID *uuid.UUID `json:"parent_topic_id"`
	MaterialID    *uuid.UUID `json:"material_id"`
}

type RejectTopicRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ReassignTopicRequest struct {
	TargetTopicID uuid.UUID `json:"target_topic_id" binding:"required"`
	IsMainTopic   bool      `json:"is_main_topic"`
}

type BulkTopicRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// PendingTopicResponse is a moderation-queue row: the proposal joined with
// its originating material, parent topic and proposer, plus display labels.
type PendingTopicResponse struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	IsMainTopic     bool                `json:"is_main_topic"`
	ParentTopic     *TopicRef           `json:"parent_topic,omitempty"`
	Material        *PendingMaterialRef `json:"material,omitempty"`
	Proposer        PersonRef           `json:"proposer"`
	Status          string              `json:"status"`
	StatusLabel     string              `json:"status_label"`
	CreatedAtLabel  string              `json:"created_at_label"`
	ApprovedAtLabel string              `json:"approved_at_label,omitempty"`
}

type TopicRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type PersonRef struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

type PendingMaterialRef struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Creator PersonRef `json:"creator"`
}

// BulkFailure reports one item that failed inside a best-effort bulk loop.
type BulkFailure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkResult is the partial-success contract for bulk approve/reject:
// per-item outcomes, never all-or-nothing.
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}
