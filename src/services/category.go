package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"ticketeira/src/db"
	"ticketeira/src/models"
	"ticketeira/src/types"
	"time"

	"github.com/gosimple/slug"
)

const maxSlugAttempts = 20

type CategoryService struct {
	store    CategoryStore
	activity *ActivityLogger
	timeout  time.Duration
	log      *slog.Logger
}

func NewCategoryService(store CategoryStore, activity *ActivityLogger, timeout time.Duration, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, activity: activity, timeout: timeout, log: logger.With("component", "category")}
}

// CreateCategory stores a category under a unique slug, suffixing -2, -3 and
// so on when the name's slug is taken.
func (s *CategoryService) CreateCategory(ctx context.Context, caller types.Caller, name, description string) (*models.Category, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	in := struct {
		Name        string `json:"name" validate:"required,max=80"`
		Description string `json:"description" validate:"max=500"`
	}{strings.TrimSpace(name), strings.TrimSpace(description)}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	name, description = in.Name, in.Description
	base := slug.Make(name)
	if base == "" {
		return nil, types.NewError(types.InvalidRequest, "name must contain letters or digits")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}
		taken, err := s.store.CategorySlugExists(ctx, candidate)
		if err != nil {
			return nil, types.Wrap(types.UpstreamFailure, err, "could not check category slug")
		}
		if taken {
			continue
		}
		category := &models.Category{Name: name, Slug: candidate, Description: description}
		err = s.store.CreateCategory(ctx, category)
		if errors.Is(err, db.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, types.Wrap(types.UpstreamFailure, err, "could not create category")
		}
		s.log.Info("category created", "category_id", category.ID, "slug", category.Slug)
		s.activity.Record(ctx, caller.UserID(), "category_created", "category", category.ID.String(), types.JSONB{"slug": category.Slug})
		return category, nil
	}
	return nil, types.NewError(types.InvalidRequest, "too many categories named %q", name)
}
