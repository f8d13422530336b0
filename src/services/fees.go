package services

import (
	"ticketeira/src/models"
	"ticketeira/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FeeDefaults apply when no global fee configuration is active.
type FeeDefaults struct {
	PlatformFeePercentage decimal.Decimal
	GatewayFeePercentage  decimal.Decimal
}

// FeeBreakdown is unrounded. Round only when presenting or persisting.
type FeeBreakdown struct {
	Subtotal    decimal.Decimal
	PlatformFee decimal.Decimal
	// PlatformFeePercentage is nil when the platform fee is a fixed amount.
	PlatformFeePercentage *decimal.Decimal
	GatewayFee            decimal.Decimal
	Total                 decimal.Decimal
}

// ResolveFees computes the platform and gateway fees of a sale. An active
// override for the producer replaces the global platform fee entirely; the
// gateway fee always comes from the global configuration.
func ResolveFees(
	producerID uuid.UUID,
	subtotal decimal.Decimal,
	quantity int,
	global *models.FeeConfig,
	override *models.ProducerCustomFee,
	defaults FeeDefaults,
) FeeBreakdown {
	b := FeeBreakdown{Subtotal: subtotal}

	feeType, feeValue := types.FEE_PERCENTAGE, defaults.PlatformFeePercentage
	gatewayPct := defaults.GatewayFeePercentage
	if global != nil && global.IsActive {
		feeType, feeValue = global.PlatformFeeType, global.PlatformFeeValue
		gatewayPct = global.PaymentGatewayFeePercentage
	}
	if override != nil && override.IsActive && override.ProducerID == producerID {
		feeType, feeValue = override.FeeType, override.FeeValue
	}

	if feeType == types.FEE_FIXED {
		b.PlatformFee = feeValue.Mul(decimal.NewFromInt(int64(quantity)))
	} else {
		pct := feeValue
		b.PlatformFeePercentage = &pct
		b.PlatformFee = subtotal.Mul(pct).Div(hundred)
	}
	b.GatewayFee = subtotal.Mul(gatewayPct).Div(hundred)
	b.Total = b.Subtotal.Add(b.PlatformFee).Add(b.GatewayFee)
	return b
}
