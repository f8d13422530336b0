package models

import (
	"ticketeira/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeConfig rows are append-only; at most one row has IsActive set.
type FeeConfig struct {
	ID                          uuid.UUID       `gorm:"primarykey;type:uuid" json:"id"`
	PlatformFeeValue            decimal.Decimal `gorm:"type:numeric(12,2)" json:"platform_fee_value"`
	PlatformFeeType             types.FeeType   `json:"platform_fee_type"`
	PaymentGatewayFeePercentage decimal.Decimal `gorm:"type:numeric(5,2)" json:"payment_gateway_fee_percentage"`
	MinimumWithdrawalAmount     decimal.Decimal `gorm:"type:numeric(12,2)" json:"minimum_withdrawal_amount"`
	IsActive                    bool            `gorm:"uniqueIndex:idx_fee_configs_single_active,where:is_active" json:"is_active"`
	CreatedBy                   *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`

	types.Timestamps
}

func (f *FeeConfig) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ProducerCustomFee replaces the global platform fee for one producer's sales
// while active. It is never combined with the global fee.
type ProducerCustomFee struct {
	ID         uuid.UUID       `gorm:"primarykey;type:uuid" json:"id"`
	ProducerID uuid.UUID       `gorm:"type:uuid;index" json:"producer_id"`
	FeeValue   decimal.Decimal `gorm:"type:numeric(12,2)" json:"fee_value"`
	FeeType    types.FeeType   `json:"fee_type"`
	IsActive   bool            `json:"is_active"`

	types.Timestamps
}

func (f *ProducerCustomFee) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
