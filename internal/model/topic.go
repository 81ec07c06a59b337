package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Moderation statuses shared by pending topics and materials. Approved and
// rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// StatusLabel returns the Hebrew label the moderation queue displays.
func StatusLabel(status string) string {
	switch status {
	case StatusPending:
		return "ממתין לאישור"
	case StatusApproved:
		return "אושר"
	case StatusRejected:
		return "נדחה"
	default:
		return status
	}
}

type MainTopic struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *MainTopic) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

type SubTopic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_sub_topic_name_parent" json:"name"`
	MainTopicID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sub_topic_name_parent" json:"main_topic_id"`
	MainTopic   MainTopic `gorm:"constraint:OnDelete:CASCADE" json:"main_topic"`
	CreatedBy   uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *SubTopic) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// PendingTopic is a proposed main or sub topic awaiting moderation,
// typically created alongside a material upload that named a topic which
// does not exist yet.
type PendingTopic struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	IsMainTopic   bool       `gorm:"not null" json:"is_main_topic"`
	ParentTopicID *uuid.UUID `gorm:"type:uuid" json:"parent_topic_id,omitempty"`
	ParentTopic   *MainTopic `gorm:"foreignKey:ParentTopicID" json:"parent_topic,omitempty"`
	MaterialID    *uuid.UUID `gorm:"type:uuid" json:"material_id,omitempty"`
	Material      *Material  `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	// RejectionReason is required on rejection and kept verbatim.
	RejectionReason *string `gorm:"type:text" json:"rejection_reason,omitempty"`
	// ReassignedToID is set when approval bound the originating material to
	// an existing topic instead of materializing a new one.
	ReassignedToID *uuid.UUID `gorm:"type:uuid" json:"reassigned_to_id,omitempty"`
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	Creator        User       `gorm:"foreignKey:CreatedBy" json:"creator"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ApprovedBy     *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
}

func (t *PendingTopic) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}
