package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Material struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	FileURL     string    `gorm:"type:text;not null" json:"file_url"`
	PreviewURL  *string   `gorm:"type:text" json:"preview_url,omitempty"`
	// Topic references stay null while the topic the uploader named is still
	// pending moderation.
	MainTopicID      *uuid.UUID       `gorm:"type:uuid;index" json:"main_topic_id,omitempty"`
	MainTopic        *MainTopic       `json:"main_topic,omitempty"`
	SubTopicID       *uuid.UUID       `gorm:"type:uuid;index" json:"sub_topic_id,omitempty"`
	SubTopic         *SubTopic        `json:"sub_topic,omitempty"`
	EstimatedMinutes int              `gorm:"not null" json:"estimated_minutes"`
	Status           string           `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason  *string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	Audiences        []TargetAudience `gorm:"many2many:material_audiences" json:"audiences,omitempty"`
	CreatedBy        uuid.UUID        `gorm:"type:uuid;not null" json:"created_by"`
	Creator          User             `gorm:"foreignKey:CreatedBy" json:"creator"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

// TargetAudience is a grade-level descriptor, e.g. 'ד-ו'.
type TargetAudience struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
