package services

import (
	"context"
	"log/slog"
	"ticketeira/src/models"
	"ticketeira/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FeeConfigInput struct {
	PlatformFeeValue            decimal.Decimal `json:"platformFeeValue" validate:"gte=0"`
	PlatformFeeType             types.FeeType   `json:"platformFeeType" validate:"fee_type"`
	PaymentGatewayFeePercentage decimal.Decimal `json:"paymentGatewayFeePercentage" validate:"gte=0,lte=100"`
	MinimumWithdrawalAmount     decimal.Decimal `json:"minimumWithdrawalAmount" validate:"gte=0"`
}

type ProducerFeeInput struct {
	ProducerID string
	FeeValue   decimal.Decimal
	FeeType    types.FeeType
	Active     bool
}

type FeeConfigService struct {
	store    FeeConfigStore
	defaults FeeDefaults
	activity *ActivityLogger
	timeout  time.Duration
	log      *slog.Logger
}

func NewFeeConfigService(store FeeConfigStore, defaults FeeDefaults, activity *ActivityLogger, timeout time.Duration, logger *slog.Logger) *FeeConfigService {
	return &FeeConfigService{
		store:    store,
		defaults: defaults,
		activity: activity,
		timeout:  timeout,
		log:      logger.With("component", "fee_config"),
	}
}

// GetActiveFeeConfig returns the active configuration, or an unsaved row
// holding the defaults when none has been stored yet.
func (s *FeeConfigService) GetActiveFeeConfig(ctx context.Context, caller types.Caller) (*models.FeeConfig, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	cfg, err := s.store.GetActiveFeeConfig(ctx)
	if err != nil {
		return nil, types.Wrap(types.UpstreamFailure, err, "could not load fee configuration")
	}
	if cfg == nil {
		cfg = &models.FeeConfig{
			PlatformFeeValue:            s.defaults.PlatformFeePercentage,
			PlatformFeeType:             types.FEE_PERCENTAGE,
			PaymentGatewayFeePercentage: s.defaults.GatewayFeePercentage,
			MinimumWithdrawalAmount:     decimal.Zero,
		}
	}
	return cfg, nil
}

// UpdateFeeConfig appends a new active configuration and deactivates the
// previous one in the same transaction.
func (s *FeeConfigService) UpdateFeeConfig(ctx context.Context, caller types.Caller, in FeeConfigInput) (*models.FeeConfig, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateFee(in.PlatformFeeType, in.PlatformFeeValue); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	adminID := caller.UserID()
	cfg := &models.FeeConfig{
		PlatformFeeValue:            in.PlatformFeeValue,
		PlatformFeeType:             in.PlatformFeeType,
		PaymentGatewayFeePercentage: in.PaymentGatewayFeePercentage,
		MinimumWithdrawalAmount:     in.MinimumWithdrawalAmount,
		CreatedBy:                   &adminID,
	}
	if err := s.store.ReplaceFeeConfig(ctx, cfg); err != nil {
		return nil, types.Wrap(types.UpstreamFailure, err, "could not save fee configuration")
	}
	s.log.Info("fee configuration replaced", "fee_config_id", cfg.ID, "admin_id", adminID)
	s.activity.Record(ctx, adminID, "fee_config_updated", "fee_config", cfg.ID.String(), types.JSONB{
		"platform_fee_value":             cfg.PlatformFeeValue.String(),
		"platform_fee_type":              string(cfg.PlatformFeeType),
		"payment_gateway_fee_percentage": cfg.PaymentGatewayFeePercentage.String(),
	})
	return cfg, nil
}

// SetProducerFee installs a platform fee override for one producer, or
// clears it when in.Active is false.
func (s *FeeConfigService) SetProducerFee(ctx context.Context, caller types.Caller, in ProducerFeeInput) (*models.ProducerCustomFee, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	producerID, err := uuid.Parse(in.ProducerID)
	if err != nil {
		return nil, types.NewError(types.InvalidRequest, "producerId must be a valid UUID")
	}
	if in.Active {
		if err := validateFee(in.FeeType, in.FeeValue); err != nil {
			return nil, err
		}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.GetUser(ctx, producerID); err != nil {
		return nil, storeError(err, "producer")
	}
	var fee *models.ProducerCustomFee
	if in.Active {
		fee = &models.ProducerCustomFee{FeeValue: in.FeeValue, FeeType: in.FeeType}
	}
	if err := s.store.ReplaceProducerFee(ctx, producerID, fee); err != nil {
		return nil, types.Wrap(types.UpstreamFailure, err, "could not save producer fee")
	}

	metadata := types.JSONB{"active": in.Active}
	if fee != nil {
		metadata["fee_value"] = fee.FeeValue.String()
		metadata["fee_type"] = string(fee.FeeType)
	}
	s.activity.Record(ctx, caller.UserID(), "producer_fee_updated", "user", producerID.String(), metadata)
	return fee, nil
}

func validateFee(feeType types.FeeType, value decimal.Decimal) error {
	if !feeType.Valid() {
		return types.NewError(types.InvalidRequest, "fee type must be percentage or fixed")
	}
	if value.IsNegative() {
		return types.NewError(types.InvalidRequest, "fee value must not be negative")
	}
	if feeType == types.FEE_PERCENTAGE && value.GreaterThan(hundred) {
		return types.NewError(types.InvalidRequest, "percentage fee must not exceed 100")
	}
	return nil
}
