package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	Get(ctx context.Context, ownerID, id snowflake.ID) (Invoice, error)
	List(ctx context.Context, ownerID snowflake.ID, req ListInvoiceRequest) (pagination.Page[Invoice], error)
	Update(ctx context.Context, ownerID, id snowflake.ID, req UpdateInvoiceRequest) (Invoice, error)

	// GenerateRenewal allocates an invoice number and persists the renewal
	// invoice for an elapsed billing period. It must run inside the same
	// transaction as the subscription's cycle advance: tx is the caller's
	// open transaction handle.
	GenerateRenewal(ctx context.Context, tx *gorm.DB, in RenewalInput) (Invoice, error)

	// MarkPaid settles a pending, processing or overdue invoice. It runs on
	// the caller's open transaction handle so settlement commits together
	// with the payment record that triggered it.
	MarkPaid(ctx context.Context, tx *gorm.DB, ownerID, id snowflake.ID) (Invoice, error)
}

// RenewalInput carries everything renewal invoicing needs so the invoice
// service never reaches back into subscription or plan storage.
type RenewalInput struct {
	OwnerID        snowflake.ID
	AccountID      snowflake.ID
	SubscriptionID snowflake.ID
	PlanID         snowflake.ID

	// Prefix is the owner's invoice-number prefix.
	Prefix string

	PlanName     string
	Quantity     int
	PricePerUnit int64
	Tax          int64

	// The elapsed service period the invoice covers.
	PeriodStart time.Time
	PeriodEnd   time.Time
}
