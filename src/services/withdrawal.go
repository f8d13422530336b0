package services

import (
	"context"
	"errors"
	"log/slog"
	"ticketeira/src/db"
	"ticketeira/src/models"
	"ticketeira/src/monitoring"
	"ticketeira/src/types"
	"ticketeira/src/utils"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultRejectionReason = "Withdrawal request rejected by the administrator"

type WithdrawalInput struct {
	WithdrawalID    string
	Action          string
	RejectionReason *string
}

// PayoutInstructions are what the administrator needs to execute the
// transfer out of band after approving a request.
type PayoutInstructions struct {
	PayoutDocument string          `json:"payoutDocument"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference"`
}

type WithdrawalResult struct {
	Success            bool                   `json:"success"`
	Status             types.WithdrawalStatus `json:"status"`
	Message            string                 `json:"message"`
	PayoutInstructions *PayoutInstructions    `json:"payoutInstructions,omitempty"`
	PayoutReferenceID  string                 `json:"payoutReferenceId,omitempty"`
}

type WithdrawalService struct {
	store         WithdrawalStore
	notifier      Notifier
	activity      *ActivityLogger
	timeout       time.Duration
	notifyTimeout time.Duration
	log           *slog.Logger
	now           func() time.Time
}

func NewWithdrawalService(store WithdrawalStore, notifier Notifier, activity *ActivityLogger, timeout time.Duration, logger *slog.Logger) *WithdrawalService {
	return &WithdrawalService{
		store:         store,
		notifier:      notifier,
		activity:      activity,
		timeout:       timeout,
		notifyTimeout: timeout,
		log:           logger.With("component", "withdrawal"),
		now:           time.Now,
	}
}

// ProcessWithdrawal moves a withdrawal request through its lifecycle:
// pending -> rejected, or pending -> awaiting_transfer -> completed.
func (s *WithdrawalService) ProcessWithdrawal(ctx context.Context, caller types.Caller, in WithdrawalInput) (*WithdrawalResult, error) {
	res, err := s.process(ctx, caller, in)
	monitoring.RecordWithdrawal(in.Action, outcome(err))
	if err != nil {
		s.log.Info("withdrawal action rejected", "action", in.Action, "withdrawal_id", in.WithdrawalID, "kind", types.KindOf(err))
	}
	return res, err
}

func (s *WithdrawalService) process(ctx context.Context, caller types.Caller, in WithdrawalInput) (*WithdrawalResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(in.WithdrawalID)
	if err != nil {
		return nil, types.NewError(types.InvalidRequest, "withdrawalId must be a valid UUID")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.store.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, storeError(err, "withdrawal request")
	}

	adminID := caller.UserID()
	now := s.now()
	switch types.WithdrawalAction(in.Action) {
	case types.WITHDRAWAL_REJECT:
		reason := defaultRejectionReason
		if in.RejectionReason != nil && *in.RejectionReason != "" {
			reason = *in.RejectionReason
		}
		if err := validate.Var(reason, "max=500"); err != nil {
			return nil, types.NewError(types.InvalidRequest, "rejectionReason must be at most 500 characters")
		}
		changes := &models.WithdrawalRequest{
			Status:          types.WITHDRAWAL_REJECTED,
			ApprovedBy:      &adminID,
			ApprovedAt:      &now,
			RejectionReason: &reason,
		}
		if err := s.transition(ctx, w, types.WITHDRAWAL_PENDING, changes); err != nil {
			return nil, err
		}
		s.record(ctx, adminID, "withdrawal_rejected", w, types.JSONB{"reason": reason})
		s.notifyProducer(ctx, w, types.TEMPLATE_WITHDRAWAL_REJECTED, "Sua solicitação de saque foi recusada", map[string]any{
			"amount": w.Amount.StringFixed(2),
			"reason": reason,
		})
		return &WithdrawalResult{Success: true, Status: types.WITHDRAWAL_REJECTED, Message: "withdrawal request rejected"}, nil

	case types.WITHDRAWAL_APPROVE:
		changes := &models.WithdrawalRequest{
			Status:     types.WITHDRAWAL_AWAITING_TRANSFER,
			ApprovedBy: &adminID,
			ApprovedAt: &now,
		}
		if err := s.transition(ctx, w, types.WITHDRAWAL_PENDING, changes); err != nil {
			return nil, err
		}
		instructions := &PayoutInstructions{
			PayoutDocument: w.PayoutDocument,
			Amount:         w.Amount.Round(2),
			Reference:      utils.PayoutReference(w.ID),
		}
		s.record(ctx, adminID, "withdrawal_approved", w, types.JSONB{"reference": instructions.Reference})
		return &WithdrawalResult{
			Success:            true,
			Status:             types.WITHDRAWAL_AWAITING_TRANSFER,
			Message:            "withdrawal approved, execute the transfer and confirm it",
			PayoutInstructions: instructions,
		}, nil

	case types.WITHDRAWAL_CONFIRM_TRANSFER:
		reference := uuid.NewString()
		changes := &models.WithdrawalRequest{
			Status:            types.WITHDRAWAL_COMPLETED,
			PayoutReferenceID: &reference,
			CompletedAt:       &now,
		}
		if err := s.transition(ctx, w, types.WITHDRAWAL_AWAITING_TRANSFER, changes); err != nil {
			return nil, err
		}
		s.record(ctx, adminID, "withdrawal_completed", w, types.JSONB{"payout_reference_id": reference})
		s.notifyProducer(ctx, w, types.TEMPLATE_WITHDRAWAL_COMPLETE, "Seu saque foi concluído", map[string]any{
			"amount":    w.Amount.StringFixed(2),
			"reference": reference,
		})
		return &WithdrawalResult{
			Success:           true,
			Status:            types.WITHDRAWAL_COMPLETED,
			Message:           "withdrawal completed",
			PayoutReferenceID: reference,
		}, nil
	}
	return nil, types.NewError(types.InvalidRequest, "unknown action %q", in.Action)
}

// transition writes changes only if the request is still in status from, so
// two administrators acting at once cannot both move it.
func (s *WithdrawalService) transition(ctx context.Context, w *models.WithdrawalRequest, from types.WithdrawalStatus, changes *models.WithdrawalRequest) error {
	if w.Status != from {
		return types.NewError(types.InvalidStateTransition, "cannot move withdrawal from %s to %s", w.Status, changes.Status)
	}
	err := s.store.TransitionWithdrawal(ctx, w.ID, from, changes)
	if errors.Is(err, db.ErrStaleStatus) {
		return types.NewError(types.InvalidStateTransition, "withdrawal is no longer %s", from)
	}
	if err != nil {
		return types.Wrap(types.UpstreamFailure, err, "could not update withdrawal request")
	}
	w.Status = changes.Status
	if changes.ApprovedBy != nil {
		w.ApprovedBy, w.ApprovedAt = changes.ApprovedBy, changes.ApprovedAt
	}
	if changes.RejectionReason != nil {
		w.RejectionReason = changes.RejectionReason
	}
	if changes.PayoutReferenceID != nil {
		w.PayoutReferenceID, w.CompletedAt = changes.PayoutReferenceID, changes.CompletedAt
	}
	return nil
}

func (s *WithdrawalService) record(ctx context.Context, adminID uuid.UUID, action string, w *models.WithdrawalRequest, metadata types.JSONB) {
	metadata["producer_id"] = w.ProducerID.String()
	metadata["amount"] = w.Amount.StringFixed(2)
	s.activity.Record(ctx, adminID, action, "withdrawal_request", w.ID.String(), metadata)
}

func (s *WithdrawalService) notifyProducer(ctx context.Context, w *models.WithdrawalRequest, template types.NotificationTemplate, subject string, fields map[string]any) {
	n := &types.Notification{Template: template, Subject: subject, Fields: fields}
	if w.Producer != nil {
		n.To, n.ToName = w.Producer.Email, w.Producer.Name
	}
	notify(ctx, s.notifier, s.notifyTimeout, s.log.With("withdrawal_id", w.ID), n)
}
