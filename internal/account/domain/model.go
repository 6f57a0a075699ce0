package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound   = errors.New("account: not found")
	ErrDuplicateUserName = errors.New("account: user name already exists")
)

// Account is a customer record under an owner's tenant.
type Account struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	OwnerID snowflake.ID `json:"ownerId" gorm:"column:owner_id;not null;index"`

	UserName  string `json:"userName" gorm:"type:text;not null"`
	FirstName string `json:"firstName" gorm:"type:text;not null"`
	LastName  string `json:"lastName" gorm:"type:text;not null"`

	EmailAddress string `json:"emailAddress" gorm:"type:text"`
	PhoneNumber  string `json:"phoneNumber" gorm:"type:text"`
	AddressLine1 string `json:"addressLine1" gorm:"type:text"`
	AddressLine2 string `json:"addressLine2" gorm:"type:text"`
	City         string `json:"city" gorm:"type:text"`
	State        string `json:"state" gorm:"type:text"`
	Country      string `json:"country" gorm:"type:text"`
	ZipCode      string `json:"zipCode" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

func (Account) TableName() string { return "accounts" }

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Account, error)
	FindByUserName(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, userName string) (*Account, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, search string, page pagination.Request) (pagination.Page[Account], error)
	Update(ctx context.Context, db *gorm.DB, account *Account) error
}

type Service interface {
	Create(ctx context.Context, ownerID snowflake.ID, req UpsertAccountRequest) (Account, error)
	Get(ctx context.Context, ownerID, id snowflake.ID) (Account, error)
	List(ctx context.Context, ownerID snowflake.ID, req ListAccountRequest) (pagination.Page[Account], error)
	Update(ctx context.Context, ownerID, id snowflake.ID, req UpsertAccountRequest) (Account, error)
}

type UpsertAccountRequest struct {
	UserName     string
	FirstName    string
	LastName     string
	EmailAddress string
	PhoneNumber  string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
	ZipCode      string
}

type ListAccountRequest struct {
	Page   int
	Limit  int
	Search string
}
