package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	RoleRegularUser   = "REGULAR_USER"
	RoleAdministrator = "ADMINISTRATOR"
)

var (
	ErrUserNotFound       = errors.New("user: not found")
	ErrDuplicateEmail     = errors.New("user: email address already exists")
	ErrInvalidCredentials = errors.New("user: invalid credentials")
)

// User is both an operator login and the owner namespace for every billing
// entity: accounts, plans, subscriptions and invoices hang off its ID.
type User struct {
	ID snowflake.ID `json:"id" gorm:"primaryKey"`

	FirstName    string `json:"firstName" gorm:"type:text;not null"`
	LastName     string `json:"lastName" gorm:"type:text;not null"`
	EmailAddress string `json:"emailAddress" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"column:password_hash;type:text;not null"`
	Role         string `json:"role" gorm:"type:text;not null"`

	// InvoicePrefix stamps this owner's invoice numbers.
	InvoicePrefix string `json:"invoicePrefix" gorm:"type:text;not null;default:'HUB'"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

func (User) TableName() string { return "users" }

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
}

type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
	Get(ctx context.Context, id snowflake.ID) (User, error)
}

type SignUpRequest struct {
	FirstName    string
	LastName     string
	EmailAddress string
	Password     string
}
