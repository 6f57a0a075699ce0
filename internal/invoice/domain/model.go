package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	StatusPending    InvoiceStatus = "pending"
	StatusOverdue    InvoiceStatus = "overdue"
	StatusCancelled  InvoiceStatus = "cancelled"
	StatusPaid       InvoiceStatus = "paid"
	StatusProcessing InvoiceStatus = "processing"
	StatusFailed     InvoiceStatus = "failed"
)

type InvoiceOrigin string

const (
	OriginPurchase    InvoiceOrigin = "purchase"
	OriginRenewal     InvoiceOrigin = "renewal"
	OriginTermination InvoiceOrigin = "termination"
	OriginRefund      InvoiceOrigin = "refund"
)

var (
	ErrInvoiceNotFound        = errors.New("invoice: not found")
	ErrDuplicateInvoiceNumber = errors.New("invoice: number already exists for owner")
	ErrInvalidStatusChange    = errors.New("invoice: invalid status change")
)

type Invoice struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	OwnerID        snowflake.ID `json:"ownerId" gorm:"column:owner_id;not null;index:idx_invoices_owner_number,unique"`
	AccountID      snowflake.ID `json:"accountId" gorm:"column:account_id;not null;index"`
	SubscriptionID snowflake.ID `json:"subscriptionId" gorm:"column:subscription_id;not null;index"`

	// InvoiceNumber is unique per owner; the storage layer enforces it as a
	// defense-in-depth check behind the sequence allocator.
	InvoiceNumber string        `json:"invoiceNumber" gorm:"type:text;not null;index:idx_invoices_owner_number,unique"`
	Status        InvoiceStatus `json:"status" gorm:"type:text;not null"`
	Origin        InvoiceOrigin `json:"origin" gorm:"type:text;not null"`

	// Amounts are integer cents. Tax is carried explicitly, never folded
	// into item totals: total = subtotal + tax.
	Subtotal int64 `json:"subtotal" gorm:"not null"`
	Tax      int64 `json:"tax" gorm:"not null;default:0"`
	Total    int64 `json:"total" gorm:"not null"`

	Notes              string `json:"notes" gorm:"type:text"`
	TermsAndConditions string `json:"termsAndConditions" gorm:"type:text"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID"`

	DueAt    time.Time  `json:"dueAt" gorm:"not null;index"`
	ClosedAt *time.Time `json:"closedAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	InvoiceID   snowflake.ID `json:"-" gorm:"column:invoice_id;not null;index"`
	ReferenceID snowflake.ID `json:"referenceId" gorm:"column:reference_id;not null"`

	Type        string `json:"type" gorm:"type:text;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Quantity    int    `json:"quantity" gorm:"not null"`

	// The covered service period.
	StartedAt time.Time `json:"startedAt" gorm:"not null"`
	EndedAt   time.Time `json:"endedAt" gorm:"not null"`

	Subtotal int64 `json:"subtotal" gorm:"not null"`
	Total    int64 `json:"total" gorm:"not null"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListFilter, page pagination.Request) (pagination.Page[Invoice], error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindOverdue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Invoice, error)
}

type ListFilter struct {
	AccountID      snowflake.ID
	SubscriptionID snowflake.ID
	Status         InvoiceStatus
	StartDate      *time.Time
	EndDate        *time.Time
	Search         string
}

type UpdateInvoiceRequest struct {
	Notes              *string
	TermsAndConditions *string
}

type ListInvoiceRequest struct {
	Page      int
	Limit     int
	AccountID string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}
