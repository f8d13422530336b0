package models

import (
	"ticketeira/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityLog struct {
	ID         uuid.UUID   `gorm:"primarykey;type:uuid" json:"id"`
	ActorID    *uuid.UUID  `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     string      `json:"action"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Metadata   types.JSONB `gorm:"type:jsonb" json:"metadata,omitempty"`

	types.Timestamps
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
