package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles are a single column on the user row. There is exactly one source of
// truth for authorization; every gate reads User.Role.
const (
	RoleGuide           = "guide"
	RoleTrainingManager = "training_manager"
	RoleAdmin           = "admin"
)

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Phone         string     `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email         *string    `gorm:"size:100" json:"email,omitempty"`
	FullName      string     `gorm:"size:100;not null" json:"full_name"`
	PasswordHash  string     `gorm:"size:255" json:"-"`
	Role          string     `gorm:"size:30;not null;default:'guide'" json:"role"`
	Active        bool       `gorm:"not null;default:false" json:"active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ActingUser is the per-request identity resolved once by the auth
// middleware and passed explicitly into every workflow operation.
type ActingUser struct {
	ID   uuid.UUID
	Role string
}

// IsModerator reports whether the user may approve, reject or reassign
// pending content.
func (a ActingUser) IsModerator() bool {
	return a.Role == RoleAdmin || a.Role == RoleTrainingManager
}

func (a ActingUser) IsAdmin() bool {
	return a.Role == RoleAdmin
}
