package services

import (
	"context"
	"log/slog"
	"strconv"
	"ticketeira/src/monitoring"
	"ticketeira/src/types"
	"ticketeira/src/utils"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metadata keys round-tripped through the payment provider.
const (
	metaEventID               = "event_id"
	metaTicketID              = "ticket_id"
	metaQuantity              = "quantity"
	metaUserID                = "user_id"
	metaCustomerEmail         = "customer_email"
	metaUnitPrice             = "unit_price"
	metaSubtotal              = "subtotal"
	metaPlatformFee           = "platform_fee"
	metaPlatformFeePercentage = "platform_fee_percentage"
	metaGatewayFee            = "gateway_fee"
	metaTotal                 = "total"
)

type CheckoutConfig struct {
	Currency        string
	AppHost         string
	MinChargeAmount decimal.Decimal
	MaxQuantity     int
	Fees            FeeDefaults
	Timeout         time.Duration
}

type CheckoutInput struct {
	EventID  string
	TicketID string
	Quantity int
}

type CheckoutResult struct {
	URL       string
	SessionID string
	Breakdown FeeBreakdown
}

type CheckoutService struct {
	catalog CatalogStore
	fees    FeeStore
	gateway PaymentGateway
	cfg     CheckoutConfig
	log     *slog.Logger
	now     func() time.Time
}

func NewCheckoutService(catalog CatalogStore, fees FeeStore, gateway PaymentGateway, cfg CheckoutConfig, logger *slog.Logger) *CheckoutService {
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = 10
	}
	return &CheckoutService{
		catalog: catalog,
		fees:    fees,
		gateway: gateway,
		cfg:     cfg,
		log:     logger.With("component", "checkout"),
		now:     time.Now,
	}
}

// CreateCheckout validates the purchase and opens a hosted checkout session.
// Inventory is not touched here; sales exist only after verified payment.
func (s *CheckoutService) CreateCheckout(ctx context.Context, caller types.Caller, in CheckoutInput) (*CheckoutResult, error) {
	res, err := s.createCheckout(ctx, caller, in)
	monitoring.RecordCheckout(outcome(err))
	if err != nil {
		s.log.Info("checkout rejected", "kind", types.KindOf(err), "error", err.Error())
	}
	return res, err
}

func (s *CheckoutService) createCheckout(ctx context.Context, caller types.Caller, in CheckoutInput) (*CheckoutResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if caller.Email() == "" {
		return nil, types.NewError(types.Unauthenticated, "caller has no contact email")
	}

	eventID, err := uuid.Parse(in.EventID)
	if err != nil {
		return nil, types.NewError(types.InvalidRequest, "eventId must be a valid UUID")
	}
	ticketID, err := uuid.Parse(in.TicketID)
	if err != nil {
		return nil, types.NewError(types.InvalidRequest, "ticketId must be a valid UUID")
	}
	if in.Quantity < 1 || in.Quantity > s.cfg.MaxQuantity {
		return nil, types.NewError(types.InvalidRequest, "quantity must be between 1 and %d", s.cfg.MaxQuantity)
	}

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "event")
	}
	if event.Status != "" && event.Status != types.EVENT_PUBLISHED {
		return nil, types.NewError(types.NotFound, "event not found")
	}
	ticket, err := s.catalog.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	if ticket.EventID != event.ID {
		return nil, types.NewError(types.NotFound, "ticket not found")
	}

	if available := ticket.Available(); available < in.Quantity {
		return nil, types.NewError(types.InsufficientInventory, "only %d tickets remaining", max(available, 0))
	}
	now := s.now()
	if !ticket.OnSale(now) {
		if ticket.SaleStartDate != nil && now.Before(*ticket.SaleStartDate) {
			return nil, types.NewError(types.SaleWindowClosed, "ticket sales have not started yet")
		}
		return nil, types.NewError(types.SaleWindowClosed, "ticket sales have ended")
	}

	global, err := s.fees.GetActiveFeeConfig(ctx)
	if err != nil {
		return nil, types.Wrap(types.UpstreamFailure, err, "could not load fee configuration")
	}
	override, err := s.fees.GetProducerCustomFee(ctx, event.ProducerID)
	if err != nil {
		return nil, types.Wrap(types.UpstreamFailure, err, "could not load producer fee")
	}

	subtotal := ticket.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
	fees := ResolveFees(event.ProducerID, subtotal, in.Quantity, global, override, s.cfg.Fees)
	if fees.Total.LessThan(s.cfg.MinChargeAmount) {
		return nil, types.NewError(types.AmountTooSmall, "total %s is below the minimum charge of %s",
			fees.Total.StringFixed(2), s.cfg.MinChargeAmount.StringFixed(2))
	}

	req := &types.CheckoutSessionRequest{
		Currency:          s.cfg.Currency,
		CustomerEmail:     caller.Email(),
		ClientReferenceID: caller.UserID().String(),
		SuccessURL:        s.cfg.AppHost + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.cfg.AppHost + "/events/" + event.ID.String(),
		LineItems:         lineItems(event.Title, ticket.Label(), ticket.Price, in.Quantity, fees),
		Metadata:          checkoutMetadata(event.ID, ticket.ID, in.Quantity, caller, ticket.Price, fees),
	}
	s.log.Debug("creating checkout session", "step", "gateway", "event_id", event.ID, "ticket_id", ticket.ID, "total", fees.Total.StringFixed(2))

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, upstreamError(err, "could not create checkout session")
	}
	return &CheckoutResult{URL: session.URL, SessionID: session.ID, Breakdown: fees}, nil
}

// lineItems lists the ticket, the platform fee and the gateway fee. Fee lines
// that round to zero are left out since the provider rejects zero amounts.
func lineItems(eventTitle, label string, price decimal.Decimal, quantity int, fees FeeBreakdown) []types.LineItem {
	items := []types.LineItem{{
		Name:        eventTitle,
		Description: label,
		UnitAmount:  utils.ToMinorUnits(price),
		Quantity:    int64(quantity),
	}}
	if amount := utils.ToMinorUnits(fees.PlatformFee); amount > 0 {
		items = append(items, types.LineItem{Name: "Taxa de serviço", UnitAmount: amount, Quantity: 1})
	}
	if amount := utils.ToMinorUnits(fees.GatewayFee); amount > 0 {
		items = append(items, types.LineItem{Name: "Taxa de processamento", UnitAmount: amount, Quantity: 1})
	}
	return items
}

func checkoutMetadata(eventID, ticketID uuid.UUID, quantity int, caller types.Caller, price decimal.Decimal, fees FeeBreakdown) map[string]string {
	pct := ""
	if fees.PlatformFeePercentage != nil {
		pct = fees.PlatformFeePercentage.StringFixed(2)
	}
	return map[string]string{
		metaEventID:               eventID.String(),
		metaTicketID:              ticketID.String(),
		metaQuantity:              strconv.Itoa(quantity),
		metaUserID:                caller.UserID().String(),
		metaCustomerEmail:         caller.Email(),
		metaUnitPrice:             price.StringFixed(2),
		metaSubtotal:              fees.Subtotal.StringFixed(2),
		metaPlatformFee:           fees.PlatformFee.StringFixed(2),
		metaPlatformFeePercentage: pct,
		metaGatewayFee:            fees.GatewayFee.StringFixed(2),
		metaTotal:                 fees.Total.StringFixed(2),
	}
}
