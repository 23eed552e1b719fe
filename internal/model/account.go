package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
)

// Account is the single persisted identity record. Employee-only fields (department,
// permissions) are empty for the user and practitioner roles.
type Account struct {
	ID                 uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	Name               string           `json:"name" gorm:"size:100;not null;index"`
	Email              string           `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash       string           `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role               auth.Role        `json:"role" gorm:"size:20;not null;default:'user';index"`
	Department         string           `json:"department,omitempty" gorm:"size:100;index"`
	Permissions        auth.Permissions `json:"permissions" gorm:"serializer:json;type:json"`
	Status             auth.Status      `json:"status" gorm:"size:20;not null;default:'active';index"`
	Phone              string           `json:"phone,omitempty" gorm:"size:30"`
	MustChangePassword bool             `json:"mustChangePassword" gorm:"default:false"`
	LastLogin          *time.Time       `json:"lastLogin,omitempty"`
	CreatedBy          *uuid.UUID       `json:"createdBy,omitempty" gorm:"type:char(36)"`
	UpdatedBy          *uuid.UUID       `json:"updatedBy,omitempty" gorm:"type:char(36)"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// Account columns used by filters.
const (
	AccountColName       = "name"
	AccountColEmail      = "email"
	AccountColRole       = "role"
	AccountColDepartment = "department"
	AccountColStatus     = "status"
)

// BeforeCreate sets UUID before creating the record.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = auth.StatusActive
	}
	if a.Permissions == nil {
		a.Permissions = auth.Permissions{}
	}
	return nil
}

// IsEmployee reports whether the account belongs to the employee role set.
func (a *Account) IsEmployee() bool {
	return a.Role.IsEmployee()
}

// Principal converts the account into the request identity. Permissions default to an
// empty set and status to active.
func (a *Account) Principal() *auth.Principal {
	perms := a.Permissions
	if perms == nil {
		perms = auth.Permissions{}
	}
	status := a.Status
	if status == "" {
		status = auth.StatusActive
	}
	return &auth.Principal{
		ID:          a.ID.String(),
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		Department:  a.Department,
		Permissions: perms,
		Status:      status,
	}
}
