package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/account/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Take(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) FindByUserName(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, userName string) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Where("owner_id = ? AND user_name = ?", ownerID, userName).
		Take(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, search string, page pagination.Request) (pagination.Page[domain.Account], error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("owner_id = ?", ownerID)

	if search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("user_name LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	return pagination.Find[domain.Account](stmt.Order("created_at DESC, id DESC"), page)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("owner_id = ? AND id = ?", account.OwnerID, account.ID).
		Select("user_name", "first_name", "last_name", "email_address", "phone_number",
			"address_line1", "address_line2", "city", "state", "country", "zip_code", "updated_at").
		Updates(account).Error
}
