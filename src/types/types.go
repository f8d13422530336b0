package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

// Request bodies only describe the JSON shape. Field rules are enforced by
// the services after the caller has been checked.
type CreateCheckoutRequestBody struct {
	EventID  string `json:"eventId"`
	TicketID string `json:"ticketId"`
	Quantity int    `json:"quantity"`
}

type VerifyPaymentRequestBody struct {
	SessionID string `json:"sessionId"`
}

type ProcessWithdrawalRequestBody struct {
	WithdrawalID    string  `json:"withdrawalId"`
	Action          string  `json:"action"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
}

type UpdateFeeConfigRequestBody struct {
	PlatformFeeValue            decimal.Decimal `json:"platformFeeValue"`
	PlatformFeeType             string          `json:"platformFeeType"`
	PaymentGatewayFeePercentage decimal.Decimal `json:"paymentGatewayFeePercentage"`
	MinimumWithdrawalAmount     decimal.Decimal `json:"minimumWithdrawalAmount"`
}

type SetProducerFeeRequestBody struct {
	ProducerID string          `json:"producerId"`
	FeeValue   decimal.Decimal `json:"feeValue"`
	FeeType    string          `json:"feeType"`
	Active     bool            `json:"active"`
}

type CreateCategoryRequestBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_CANCELED  EventStatus = "canceled"
)

type FeeType string

const (
	FEE_PERCENTAGE FeeType = "percentage"
	FEE_FIXED      FeeType = "fixed"
)

func (t FeeType) Valid() bool {
	return t == FEE_PERCENTAGE || t == FEE_FIXED
}

type PaymentStatus string

const (
	PAYMENT_PAID    PaymentStatus = "paid"
	PAYMENT_UNPAID  PaymentStatus = "unpaid"
	PAYMENT_PENDING PaymentStatus = "pending"
)

type WithdrawalStatus string

const (
	WITHDRAWAL_PENDING           WithdrawalStatus = "pending"
	WITHDRAWAL_AWAITING_TRANSFER WithdrawalStatus = "awaiting_transfer"
	WITHDRAWAL_COMPLETED         WithdrawalStatus = "completed"
	WITHDRAWAL_REJECTED          WithdrawalStatus = "rejected"
)

type WithdrawalAction string

const (
	WITHDRAWAL_APPROVE          WithdrawalAction = "approve"
	WITHDRAWAL_REJECT           WithdrawalAction = "reject"
	WITHDRAWAL_CONFIRM_TRANSFER WithdrawalAction = "confirm_transfer"
)

func (a WithdrawalAction) Valid() bool {
	switch a {
	case WITHDRAWAL_APPROVE, WITHDRAWAL_REJECT, WITHDRAWAL_CONFIRM_TRANSFER:
		return true
	}
	return false
}

type Role string

const (
	ROLE_BUYER    Role = "buyer"
	ROLE_PRODUCER Role = "producer"
	ROLE_ADMIN    Role = "admin"
)
