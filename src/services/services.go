package services

import (
	"context"
	"errors"
	"log/slog"
	"ticketeira/src/db"
	"ticketeira/src/models"
	"ticketeira/src/types"
	"time"

	"github.com/google/uuid"
)

type CatalogStore interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
}

type FeeStore interface {
	GetActiveFeeConfig(ctx context.Context) (*models.FeeConfig, error)
	GetProducerCustomFee(ctx context.Context, producerID uuid.UUID) (*models.ProducerCustomFee, error)
}

type SaleStore interface {
	CatalogStore
	FindSaleBatch(ctx context.Context, sessionID string) (*models.SaleBatch, error)
	CreateSaleBatch(ctx context.Context, batch *models.SaleBatch) error
}

type WithdrawalStore interface {
	GetWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
	TransitionWithdrawal(ctx context.Context, id uuid.UUID, from types.WithdrawalStatus, changes *models.WithdrawalRequest) error
}

type FeeConfigStore interface {
	GetActiveFeeConfig(ctx context.Context) (*models.FeeConfig, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ReplaceFeeConfig(ctx context.Context, cfg *models.FeeConfig) error
	ReplaceProducerFee(ctx context.Context, producerID uuid.UUID, fee *models.ProducerCustomFee) error
}

type CategoryStore interface {
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

type ActivityStore interface {
	LogActivity(ctx context.Context, entry *models.ActivityLog) error
}

// PaymentGateway is the hosted checkout provider. Implementations return
// *types.Error values classified as NotFound or UpstreamFailure.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req *types.CheckoutSessionRequest) (*types.CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*types.ProviderSession, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *types.Notification) error
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func requireCaller(caller types.Caller) error {
	if caller == nil || caller.UserID() == uuid.Nil {
		return types.NewError(types.Unauthenticated, "authentication required")
	}
	return nil
}

func requireAdmin(caller types.Caller) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return types.NewError(types.Unauthorized, "administrator role required")
	}
	return nil
}

// storeError classifies a data store failure while loading what.
func storeError(err error, what string) error {
	if errors.Is(err, db.ErrNotFound) {
		return types.NewError(types.NotFound, "%s not found", what)
	}
	return types.Wrap(types.UpstreamFailure, err, "could not load %s", what)
}

// upstreamError keeps an already classified error and wraps anything else.
func upstreamError(err error, format string, args ...any) error {
	var e *types.Error
	if errors.As(err, &e) {
		return e
	}
	return types.Wrap(types.UpstreamFailure, err, format, args...)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(types.KindOf(err))
}

// notify delivers n after the caller's writes are committed. Failures are
// logged and never returned.
func notify(ctx context.Context, notifier Notifier, timeout time.Duration, logger *slog.Logger, n *types.Notification) {
	if notifier == nil || n.To == "" {
		logger.Warn("notification skipped", "template", n.Template, "reason", "no recipient")
		return
	}
	ctx, cancel := withTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := notifier.Notify(ctx, n); err != nil {
		logger.Warn("notification failed", "template", n.Template, "error", err.Error())
	}
}
