package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/plan/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Plan, error) {
	var p domain.Plan
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Take(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, code string) (*domain.Plan, error) {
	var p domain.Plan
	err := db.WithContext(ctx).
		Where("owner_id = ? AND code = ?", ownerID, code).
		Take(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, search string, page pagination.Request) (pagination.Page[domain.Plan], error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Plan{}).
		Where("owner_id = ?", ownerID)

	if search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("name LIKE ? OR code LIKE ?", like, like)
	}

	return pagination.Find[domain.Plan](stmt.Order("created_at DESC, id DESC"), page)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).
		Model(&domain.Plan{}).
		Where("owner_id = ? AND id = ?", plan.OwnerID, plan.ID).
		Select("name", "description", "price_per_billing_cycle", "setup_fee", "renews", "updated_at").
		Updates(plan).Error
}
