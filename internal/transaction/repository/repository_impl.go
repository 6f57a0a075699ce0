package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/transaction/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Transaction, error) {
	var t domain.Transaction
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Take(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListFilter, page pagination.Request) (pagination.Page[domain.Transaction], error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("owner_id = ?", ownerID)

	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}
	if filter.PaymentMethod != "" {
		stmt = stmt.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.ReferenceID != 0 {
		stmt = stmt.Where("reference_id = ?", filter.ReferenceID)
	}

	return pagination.Find[domain.Transaction](stmt.Order("created_at DESC, id DESC"), page)
}
