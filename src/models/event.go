package models

import (
	"ticketeira/src/types"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID         uuid.UUID         `gorm:"primarykey;type:uuid" json:"id"`
	Title      string            `json:"title,omitempty"`
	EventDate  time.Time         `json:"event_date,omitempty"`
	Venue      string            `json:"venue,omitempty"`
	Address    string            `json:"address,omitempty"`
	ProducerID uuid.UUID         `gorm:"type:uuid;index" json:"producer_id"`
	CategoryID *uuid.UUID        `gorm:"type:uuid" json:"category_id,omitempty"`
	ImageURL   *string           `json:"image_url,omitempty"`
	Status     types.EventStatus `gorm:"default:'published'" json:"status,omitempty"`

	Producer *User     `gorm:"foreignKey:producer_id" json:"-"`
	Category *Category `gorm:"foreignKey:category_id" json:"category,omitempty"`
	Tickets  []Ticket  `json:"tickets,omitempty"`

	types.Timestamps
}
