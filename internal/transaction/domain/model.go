package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionAction string

const (
	ActionPurchase TransactionAction = "purchase"
	ActionRefund   TransactionAction = "refund"
	ActionVerify   TransactionAction = "verify"
)

type PaymentMethod string

const (
	MethodCash       PaymentMethod = "cash"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodOnline     PaymentMethod = "online"
)

var ErrTransactionNotFound = errors.New("transaction: not found")

// Transaction records a money movement against an invoice (purchase, refund)
// or a verification hold.
type Transaction struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	OwnerID snowflake.ID `json:"ownerId" gorm:"column:owner_id;not null;index"`

	Amount   int64             `json:"amount" gorm:"not null"`
	Tax      int64             `json:"tax" gorm:"not null;default:0"`
	Comments string            `json:"comments" gorm:"type:text"`
	Action   TransactionAction `json:"action" gorm:"type:text;not null"`

	// ReferenceID points at the invoice the action settles.
	ReferenceID   snowflake.ID  `json:"referenceId" gorm:"column:reference_id;not null;index"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"type:text;not null"`

	// Metadata carries processor-specific details, such as a card reference
	// or an external receipt number.
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, txn *Transaction) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Transaction, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListFilter, page pagination.Request) (pagination.Page[Transaction], error)
}

type ListFilter struct {
	Action        TransactionAction
	PaymentMethod PaymentMethod
	ReferenceID   snowflake.ID
}

type Service interface {
	// Create records the transaction and, for purchases, settles the
	// referenced invoice and resolves the subscription's collection state.
	Create(ctx context.Context, ownerID snowflake.ID, req CreateTransactionRequest) (Transaction, error)
	Get(ctx context.Context, ownerID, id snowflake.ID) (Transaction, error)
	List(ctx context.Context, ownerID snowflake.ID, req ListTransactionRequest) (pagination.Page[Transaction], error)
}

type CreateTransactionRequest struct {
	Amount        int64
	Tax           int64
	Comments      string
	Action        TransactionAction
	ReferenceID   string
	PaymentMethod PaymentMethod
	Metadata      datatypes.JSON
}

type ListTransactionRequest struct {
	Page          int
	Limit         int
	Action        string
	PaymentMethod string
	ReferenceID   string
}
