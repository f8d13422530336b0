package models

import (
	"ticketeira/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ticket is a ticket batch: a named allotment for an event with its own
// price and sale window. QuantitySold never exceeds QuantityTotal.
type Ticket struct {
	ID            uuid.UUID       `gorm:"primarykey;type:uuid" json:"id"`
	EventID       uuid.UUID       `gorm:"type:uuid;index" json:"event_id"`
	BatchName     string          `json:"batch_name"`
	Sector        string          `json:"sector,omitempty"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	QuantityTotal int             `gorm:"check:quantity_total >= 0" json:"quantity_total"`
	QuantitySold  int             `gorm:"default:0;check:quantity_sold <= quantity_total" json:"quantity_sold"`
	SaleStartDate *time.Time      `json:"sale_start_date,omitempty"`
	SaleEndDate   *time.Time      `json:"sale_end_date,omitempty"`

	Event *Event `json:"event,omitempty"`

	types.Timestamps
}

func (t *Ticket) Available() int {
	return t.QuantityTotal - t.QuantitySold
}

// OnSale reports whether now lies within the sale window. A missing bound
// leaves that side of the window open.
func (t *Ticket) OnSale(now time.Time) bool {
	if t.SaleStartDate != nil && now.Before(*t.SaleStartDate) {
		return false
	}
	if t.SaleEndDate != nil && now.After(*t.SaleEndDate) {
		return false
	}
	return true
}

// Label describes the batch in line items and emails.
func (t *Ticket) Label() string {
	if t.Sector == "" {
		return t.BatchName
	}
	return t.BatchName + " - " + t.Sector
}
