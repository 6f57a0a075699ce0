package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/invoice/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	err := db.WithContext(ctx).Create(invoice).Error
	if err != nil && isUniqueViolation(err) {
		return domain.ErrDuplicateInvoiceNumber
	}
	return err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ? AND id = ?", ownerID, id).
		Take(&inv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListFilter, page pagination.Request) (pagination.Page[domain.Invoice], error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Preload("Items").
		Where("owner_id = ?", ownerID)

	if filter.AccountID != 0 {
		stmt = stmt.Where("account_id = ?", filter.AccountID)
	}
	if filter.SubscriptionID != 0 {
		stmt = stmt.Where("subscription_id = ?", filter.SubscriptionID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		stmt = stmt.Where("invoice_number LIKE ?", "%"+filter.Search+"%")
	}

	return pagination.Find[domain.Invoice](stmt.Order("created_at DESC, id DESC"), page)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("owner_id = ? AND id = ?", invoice.OwnerID, invoice.ID).
		Select("status", "notes", "terms_and_conditions", "closed_at", "updated_at").
		Updates(invoice).Error
}

func (r *repo) FindOverdue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Invoice, error) {
	var items []domain.Invoice
	err := db.WithContext(ctx).
		Where("status = ? AND due_at < ?", domain.StatusPending, now).
		Order("due_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres 23505 and sqlite messages both mention the word.
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
