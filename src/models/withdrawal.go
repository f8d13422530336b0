package models

import (
	"ticketeira/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalRequest struct {
	ID                uuid.UUID              `gorm:"primarykey;type:uuid" json:"id"`
	ProducerID        uuid.UUID              `gorm:"type:uuid;index" json:"producer_id"`
	Amount            decimal.Decimal        `gorm:"type:numeric(12,2)" json:"amount"`
	PayoutDocument    string                 `json:"payout_document"`
	Status            types.WithdrawalStatus `gorm:"default:'pending';index" json:"status"`
	ApprovedBy        *uuid.UUID             `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt        *time.Time             `json:"approved_at,omitempty"`
	RejectionReason   *string                `json:"rejection_reason,omitempty"`
	PayoutReferenceID *string                `json:"payout_reference_id,omitempty"`
	CompletedAt       *time.Time             `json:"completed_at,omitempty"`

	Producer *User `gorm:"foreignKey:producer_id" json:"producer,omitempty"`

	types.Timestamps
}
