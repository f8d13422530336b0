package models

import (
	"ticketeira/src/types"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	Name         string     `json:"name,omitempty"`
	Email        string     `gorm:"index" json:"email,omitempty"`
	Role         types.Role `gorm:"default:'buyer'" json:"role,omitempty"`
	RoleApproved bool       `json:"role_approved"`

	types.Timestamps
}

func (u *User) Identity() *types.Identity {
	return &types.Identity{
		ID:           u.ID,
		EmailAddress: u.Email,
		Role:         u.Role,
		RoleApproved: u.RoleApproved,
	}
}
