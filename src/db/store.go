package db

import (
	"context"
	"errors"
	"ticketeira/src/models"
	"ticketeira/src/models/scopes"
	"ticketeira/src/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("duplicate record")
	ErrInventoryExhausted = errors.New("not enough tickets left in batch")
	ErrStaleStatus        = errors.New("status changed concurrently")
)

// Store is the relational data service behind the checkout and settlement
// operations. Every method is a single attempt; callers own retry policy.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&event).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (s *Store) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&ticket).Error; err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetActiveFeeConfig returns nil without error when no row is active.
func (s *Store) GetActiveFeeConfig(ctx context.Context) (*models.FeeConfig, error) {
	var cfg models.FeeConfig
	err := s.db.WithContext(ctx).Scopes(scopes.Active).Order("created_at desc").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetProducerCustomFee returns the producer's active override, or nil.
func (s *Store) GetProducerCustomFee(ctx context.Context, producerID uuid.UUID) (*models.ProducerCustomFee, error) {
	var fee models.ProducerCustomFee
	err := s.db.WithContext(ctx).
		Scopes(scopes.Active).
		Where("producer_id = ?", producerID).
		Order("created_at desc").
		First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

func (s *Store) FindSaleBatch(ctx context.Context, sessionID string) (*models.SaleBatch, error) {
	var batch models.SaleBatch
	err := s.db.WithContext(ctx).
		Preload("Sales", func(db *gorm.DB) *gorm.DB {
			return db.Order("unit_index asc")
		}).
		Where("stripe_session_id = ?", sessionID).
		First(&batch).Error
	if err != nil {
		return nil, translate(err)
	}
	return &batch, nil
}

// CreateSaleBatch inserts the batch, its unit sales and the sold-quantity
// increment in one transaction. The increment is conditional on remaining
// inventory so concurrent batches for the same ticket cannot oversell.
func (s *Store) CreateSaleBatch(ctx context.Context, batch *models.SaleBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	for i := range batch.Sales {
		batch.Sales[i].SaleBatchID = batch.ID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(batch).Error; err != nil {
			return translate(err)
		}
		if len(batch.Sales) > 0 {
			if err := tx.Create(&batch.Sales).Error; err != nil {
				return translate(err)
			}
		}
		res := tx.Model(&models.Ticket{}).
			Where("id = ? AND quantity_sold + ? <= quantity_total", batch.TicketID, batch.Quantity).
			Update("quantity_sold", gorm.Expr("quantity_sold + ?", batch.Quantity))
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInventoryExhausted
		}
		return nil
	})
}

func (s *Store) GetWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := s.db.WithContext(ctx).
		Preload("Producer").
		Scopes(scopes.WithID(id)).
		First(&w).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// TransitionWithdrawal applies the non-zero fields of changes to the request
// only while it is still in status from.
func (s *Store) TransitionWithdrawal(ctx context.Context, id uuid.UUID, from types.WithdrawalStatus, changes *models.WithdrawalRequest) error {
	res := s.db.WithContext(ctx).
		Model(&models.WithdrawalRequest{}).
		Scopes(scopes.WithStatus(from)).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ReplaceFeeConfig deactivates the active row and inserts cfg as the new
// active one. History rows are never updated otherwise.
func (s *Store) ReplaceFeeConfig(ctx context.Context, cfg *models.FeeConfig) error {
	cfg.IsActive = true
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.FeeConfig{}).
			Scopes(scopes.Active).
			Update("is_active", false).Error
		if err != nil {
			return translate(err)
		}
		return translate(tx.Create(cfg).Error)
	})
}

// ReplaceProducerFee deactivates every override of the producer and, when fee
// is not nil, inserts it as the active one.
func (s *Store) ReplaceProducerFee(ctx context.Context, producerID uuid.UUID, fee *models.ProducerCustomFee) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.ProducerCustomFee{}).
			Scopes(scopes.Active).
			Where("producer_id = ?", producerID).
			Update("is_active", false).Error
		if err != nil {
			return translate(err)
		}
		if fee == nil {
			return nil
		}
		fee.ProducerID = producerID
		fee.IsActive = true
		return translate(tx.Create(fee).Error)
	})
}

func (s *Store) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return translate(s.db.WithContext(ctx).Create(category).Error)
}

func (s *Store) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInventoryExhausted):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return ErrDuplicate
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
