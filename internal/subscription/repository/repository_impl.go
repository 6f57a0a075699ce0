package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/subscription/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Take(&sub).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListFilter, page pagination.Request) (pagination.Page[domain.Subscription], error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("owner_id = ?", ownerID)

	if filter.AccountID != 0 {
		stmt = stmt.Where("account_id = ?", filter.AccountID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	return pagination.Find[domain.Subscription](stmt.Order("created_at DESC, id DESC"), page)
}

// Save applies the record guarded by its version column so concurrent
// lifecycle advancement cannot be committed twice.
func (r *repo) Save(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	prev := sub.Version
	sub.Version = prev + 1

	res := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ? AND version = ?", sub.ID, prev).
		Select("*").
		Omit("id", "owner_id", "created_at").
		Updates(sub)
	if res.Error != nil {
		sub.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		sub.Version = prev
		return domain.ErrConcurrentModification
	}
	return nil
}

func (r *repo) FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Subscription, error) {
	var items []domain.Subscription
	err := db.WithContext(ctx).
		Where("current_period_end <= ?", now).
		Where("status NOT IN ?", []domain.SubscriptionStatus{
			domain.StatusCanceled,
			domain.StatusExpired,
			domain.StatusPaused,
		}).
		Where("cancelled_at IS NULL AND paused_at IS NULL").
		Order("current_period_end ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
