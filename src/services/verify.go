package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"ticketeira/src/db"
	"ticketeira/src/models"
	"ticketeira/src/monitoring"
	"ticketeira/src/types"
	"ticketeira/src/utils"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const providerStatusPaid = "paid"

type VerifyConfig struct {
	Timeout       time.Duration
	NotifyTimeout time.Duration
}

type SaleReceipt struct {
	SaleID uuid.UUID `json:"saleId"`
	QRCode string    `json:"qrCode"`
}

type VerifyResult struct {
	Success         bool          `json:"success"`
	Status          string        `json:"status,omitempty"`
	AlreadyRecorded bool          `json:"alreadyRecorded,omitempty"`
	Sales           []SaleReceipt `json:"sales,omitempty"`
	QRCodes         []string      `json:"qrCodes,omitempty"`
}

type VerifyService struct {
	store    SaleStore
	gateway  PaymentGateway
	notifier Notifier
	cfg      VerifyConfig
	log      *slog.Logger
}

func NewVerifyService(store SaleStore, gateway PaymentGateway, notifier Notifier, cfg VerifyConfig, logger *slog.Logger) *VerifyService {
	return &VerifyService{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		log:      logger.With("component", "verify"),
	}
}

// sessionOrder is the purchase reconstructed from checkout session metadata.
type sessionOrder struct {
	eventID     uuid.UUID
	ticketID    uuid.UUID
	buyerID     uuid.UUID
	quantity    int
	unitPrice   decimal.Decimal
	subtotal    decimal.Decimal
	platformFee decimal.Decimal
	gatewayFee  decimal.Decimal
	total       decimal.Decimal
}

// VerifyAndMaterialize turns a paid checkout session into one sale per
// ticket unit. Repeated calls for the same session return the sales created
// by the first one.
func (s *VerifyService) VerifyAndMaterialize(ctx context.Context, caller types.Caller, sessionID string) (*VerifyResult, error) {
	res, err := s.verify(ctx, caller, sessionID)
	switch {
	case err != nil:
		monitoring.RecordVerification(outcome(err))
	case !res.Success:
		monitoring.RecordVerification("unpaid")
	case res.AlreadyRecorded:
		monitoring.RecordVerification(string(types.AlreadyProcessed))
	default:
		monitoring.RecordVerification("ok")
	}
	return res, err
}

func (s *VerifyService) verify(ctx context.Context, caller types.Caller, sessionID string) (*VerifyResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, types.NewError(types.InvalidRequest, "sessionId is required")
	}
	logger := s.log.With("session_id", sessionID, "user_id", caller.UserID())

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	session, err := s.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, upstreamError(err, "could not retrieve checkout session")
	}
	if session.PaymentStatus != providerStatusPaid {
		logger.Info("checkout session not paid", "step", "status", "status", session.PaymentStatus)
		return &VerifyResult{Success: false, Status: session.PaymentStatus}, nil
	}

	order, err := s.parseOrder(logger, session)
	if err != nil {
		return nil, err
	}
	if err := s.checkIdentity(logger, caller, session, order); err != nil {
		return nil, err
	}

	existing, err := s.store.FindSaleBatch(ctx, sessionID)
	if err == nil {
		logger.Info("checkout session already materialized", "step", "idempotency", "batch_id", existing.ID)
		return batchResult(existing), nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, types.Wrap(types.UpstreamFailure, err, "could not look up sales")
	}

	event, err := s.store.GetEvent(ctx, order.eventID)
	if err != nil {
		return nil, storeError(err, "event")
	}
	ticket, err := s.store.GetTicket(ctx, order.ticketID)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	if ticket.EventID != event.ID {
		return nil, types.NewError(types.InvalidRequest, "session ticket does not belong to its event")
	}

	batch, err := buildBatch(session, order)
	if err != nil {
		return nil, types.Wrap(types.UpstreamFailure, err, "could not generate redemption tokens")
	}

	err = s.store.CreateSaleBatch(ctx, batch)
	switch {
	case errors.Is(err, db.ErrDuplicate):
		// A concurrent verification of the same session won the insert.
		existing, findErr := s.store.FindSaleBatch(ctx, sessionID)
		if findErr != nil {
			return nil, types.Wrap(types.UpstreamFailure, findErr, "could not look up sales")
		}
		logger.Info("checkout session materialized concurrently", "step", "insert", "batch_id", existing.ID)
		return batchResult(existing), nil
	case errors.Is(err, db.ErrInventoryExhausted):
		logger.Error("paid session exceeds remaining inventory", "step", "insert", "ticket_id", order.ticketID, "quantity", order.quantity)
		return nil, types.NewError(types.InsufficientInventory, "not enough tickets remaining for this order")
	case err != nil:
		return nil, types.Wrap(types.UpstreamFailure, err, "could not record sales")
	}
	monitoring.RecordSalesMaterialized(order.quantity)
	logger.Info("sales materialized", "step", "insert", "batch_id", batch.ID, "quantity", order.quantity)

	res := &VerifyResult{Success: true}
	for _, sale := range batch.Sales {
		res.Sales = append(res.Sales, SaleReceipt{SaleID: sale.ID, QRCode: sale.QRCode})
		res.QRCodes = append(res.QRCodes, sale.QRCode)
	}

	notify(ctx, s.notifier, s.cfg.NotifyTimeout, logger, &types.Notification{
		To:       caller.Email(),
		Template: types.TEMPLATE_SALE_CONFIRMATION,
		Subject:  "Seus ingressos para " + event.Title,
		Fields: map[string]any{
			"event_title": event.Title,
			"venue":       event.Venue,
			"event_date":  event.EventDate.Format("02/01/2006 15:04"),
			"ticket":      ticket.Label(),
			"quantity":    order.quantity,
			"total":       order.total.StringFixed(2),
		},
		QRCodes: res.QRCodes,
	})
	return res, nil
}

// parseOrder reads the session metadata. Identifiers, quantity and a price
// are required. A single missing fee is derived from the charged amount, and
// the recorded amounts must add up to what the provider charged.
func (s *VerifyService) parseOrder(logger *slog.Logger, session *types.ProviderSession) (*sessionOrder, error) {
	meta := session.Metadata
	order := &sessionOrder{}
	var err error
	if order.buyerID, err = uuid.Parse(meta[metaUserID]); err != nil {
		return nil, types.NewError(types.InvalidRequest, "checkout session has no valid buyer")
	}
	if order.eventID, err = uuid.Parse(meta[metaEventID]); err != nil {
		return nil, types.NewError(types.InvalidRequest, "checkout session has no valid event")
	}
	if order.ticketID, err = uuid.Parse(meta[metaTicketID]); err != nil {
		return nil, types.NewError(types.InvalidRequest, "checkout session has no valid ticket")
	}
	if order.quantity, err = strconv.Atoi(meta[metaQuantity]); err != nil || order.quantity < 1 {
		return nil, types.NewError(types.InvalidRequest, "checkout session has no valid quantity")
	}

	money := func(key string) (decimal.Decimal, bool) {
		raw, ok := meta[key]
		if !ok {
			return decimal.Zero, false
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			logger.Warn("checkout session metadata malformed", "step", "metadata", "key", key, "value", raw)
			return decimal.Zero, false
		}
		return v, true
	}
	qty := decimal.NewFromInt(int64(order.quantity))
	subtotal, hasSubtotal := money(metaSubtotal)
	unitPrice, hasUnitPrice := money(metaUnitPrice)
	switch {
	case hasSubtotal && hasUnitPrice:
	case hasSubtotal:
		unitPrice = subtotal.Div(qty).Round(2)
	case hasUnitPrice:
		subtotal = unitPrice.Mul(qty)
	default:
		return nil, types.NewError(types.InvalidRequest, "checkout session has no valid price")
	}

	// The amount the provider charged wins over the metadata total.
	charged, hasCharged := money(metaTotal)
	if session.AmountTotal > 0 {
		charged, hasCharged = utils.FromMinorUnits(session.AmountTotal), true
	}
	platformFee, hasPlatformFee := money(metaPlatformFee)
	gatewayFee, hasGatewayFee := money(metaGatewayFee)
	switch {
	case hasPlatformFee && hasGatewayFee:
	case hasCharged && hasGatewayFee:
		platformFee = charged.Sub(subtotal).Sub(gatewayFee)
	case hasCharged && hasPlatformFee:
		gatewayFee = charged.Sub(subtotal).Sub(platformFee)
	default:
		logger.Warn("checkout session fees cannot be reconciled", "step", "metadata")
		return nil, types.NewError(types.InvalidRequest, "checkout session fees cannot be reconciled")
	}

	total := subtotal.Add(platformFee).Add(gatewayFee)
	if platformFee.IsNegative() || gatewayFee.IsNegative() ||
		(hasCharged && !utils.RoundMoney(total).Equal(utils.RoundMoney(charged))) {
		logger.Warn("checkout session amounts do not reconcile", "step", "metadata",
			"total", total.StringFixed(2), "charged", charged.StringFixed(2))
		return nil, types.NewError(types.InvalidRequest, "checkout session amounts do not reconcile")
	}
	order.unitPrice, order.subtotal = unitPrice, subtotal
	order.platformFee, order.gatewayFee, order.total = platformFee, gatewayFee, total
	return order, nil
}

// checkIdentity fails with SecurityViolation when the session was created
// for someone other than the caller.
func (s *VerifyService) checkIdentity(logger *slog.Logger, caller types.Caller, session *types.ProviderSession, order *sessionOrder) error {
	if order.buyerID != caller.UserID() {
		logger.Warn("checkout session buyer mismatch", "audit", "security", "mismatch", "buyer", "session_buyer", order.buyerID)
		return types.NewError(types.SecurityViolation, "checkout session belongs to another buyer")
	}
	metaEmail := strings.TrimSpace(session.Metadata[metaCustomerEmail])
	providerEmail := strings.TrimSpace(session.CustomerEmail)
	if metaEmail != "" && providerEmail != "" && !strings.EqualFold(metaEmail, providerEmail) {
		logger.Warn("checkout session customer mismatch", "audit", "security", "mismatch", "customer_email")
		return types.NewError(types.SecurityViolation, "checkout session customer does not match")
	}
	return nil
}

func buildBatch(session *types.ProviderSession, order *sessionOrder) (*models.SaleBatch, error) {
	batch := &models.SaleBatch{
		ID:              uuid.New(),
		StripeSessionID: session.ID,
		BuyerID:         order.buyerID,
		EventID:         order.eventID,
		TicketID:        order.ticketID,
		Quantity:        order.quantity,
		Subtotal:        utils.RoundMoney(order.subtotal),
		PlatformFee:     utils.RoundMoney(order.platformFee),
		GatewayFee:      utils.RoundMoney(order.gatewayFee),
		TotalAmount:     utils.RoundMoney(order.total),
	}
	platformShares := utils.SplitEvenly(order.platformFee, order.quantity)
	gatewayShares := utils.SplitEvenly(order.gatewayFee, order.quantity)
	unitPrice := utils.RoundMoney(order.unitPrice)

	var paymentIntentID, customerID *string
	if session.PaymentIntentID != "" {
		paymentIntentID = &session.PaymentIntentID
	}
	if session.CustomerID != "" {
		customerID = &session.CustomerID
	}

	for i := range order.quantity {
		token, err := utils.NewSecureToken()
		if err != nil {
			return nil, err
		}
		batch.Sales = append(batch.Sales, models.Sale{
			ID:                    uuid.New(),
			SaleBatchID:           batch.ID,
			UnitIndex:             i + 1,
			BuyerID:               order.buyerID,
			EventID:               order.eventID,
			TicketID:              order.ticketID,
			Quantity:              1,
			UnitPrice:             unitPrice,
			TotalPrice:            unitPrice.Add(platformShares[i]).Add(gatewayShares[i]),
			PlatformFee:           platformShares[i],
			GatewayFee:            gatewayShares[i],
			ProducerAmount:        unitPrice,
			PaymentStatus:         types.PAYMENT_PAID,
			StripePaymentIntentID: paymentIntentID,
			StripeCustomerID:      customerID,
			StripeSessionID:       session.ID,
			QRCode:                utils.RedemptionPayload(order.eventID, token),
			SecureToken:           token,
		})
	}
	return batch, nil
}

func batchResult(batch *models.SaleBatch) *VerifyResult {
	res := &VerifyResult{Success: true, AlreadyRecorded: true}
	for _, sale := range batch.Sales {
		res.Sales = append(res.Sales, SaleReceipt{SaleID: sale.ID, QRCode: sale.QRCode})
		res.QRCodes = append(res.QRCodes, sale.QRCode)
	}
	return res
}
