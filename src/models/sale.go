package models

import (
	"ticketeira/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleBatch groups the sales materialized from one checkout session. The
// unique session id is what makes materialization idempotent.
type SaleBatch struct {
	ID              uuid.UUID       `gorm:"primarykey;type:uuid" json:"id"`
	StripeSessionID string          `gorm:"uniqueIndex" json:"stripe_session_id"`
	BuyerID         uuid.UUID       `gorm:"type:uuid;index" json:"buyer_id"`
	EventID         uuid.UUID       `gorm:"type:uuid" json:"event_id"`
	TicketID        uuid.UUID       `gorm:"type:uuid" json:"ticket_id"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2)" json:"subtotal"`
	PlatformFee     decimal.Decimal `gorm:"type:numeric(12,2)" json:"platform_fee"`
	GatewayFee      decimal.Decimal `gorm:"type:numeric(12,2)" json:"gateway_fee"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_amount"`

	Sales []Sale `gorm:"foreignKey:sale_batch_id" json:"sales,omitempty"`

	types.Timestamps
}

func (b *SaleBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Sale is one paid ticket unit. Quantity is always 1. UnitIndex numbers the
// units of a batch from 1 and fixes the order they are returned in.
type Sale struct {
	ID                    uuid.UUID           `gorm:"primarykey;type:uuid" json:"id"`
	SaleBatchID           uuid.UUID           `gorm:"type:uuid;index;uniqueIndex:idx_sales_batch_unit" json:"sale_batch_id"`
	UnitIndex             int                 `gorm:"not null;uniqueIndex:idx_sales_batch_unit" json:"unit_index"`
	BuyerID               uuid.UUID           `gorm:"type:uuid;index" json:"buyer_id"`
	EventID               uuid.UUID           `gorm:"type:uuid;index" json:"event_id"`
	TicketID              uuid.UUID           `gorm:"type:uuid" json:"ticket_id"`
	Quantity              int                 `json:"quantity"`
	UnitPrice             decimal.Decimal     `gorm:"type:numeric(12,2)" json:"unit_price"`
	TotalPrice            decimal.Decimal     `gorm:"type:numeric(12,2)" json:"total_price"`
	PlatformFee           decimal.Decimal     `gorm:"type:numeric(12,2)" json:"platform_fee"`
	GatewayFee            decimal.Decimal     `gorm:"type:numeric(12,2)" json:"gateway_fee"`
	ProducerAmount        decimal.Decimal     `gorm:"type:numeric(12,2)" json:"producer_amount"`
	PaymentStatus         types.PaymentStatus `json:"payment_status"`
	StripePaymentIntentID *string             `json:"stripe_payment_intent_id,omitempty"`
	StripeCustomerID      *string             `json:"stripe_customer_id,omitempty"`
	StripeSessionID       string              `gorm:"index" json:"stripe_session_id"`
	QRCode                string              `json:"qr_code"`
	SecureToken           string              `gorm:"uniqueIndex" json:"-"`

	types.Timestamps
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
