package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListFilter, page pagination.Request) (pagination.Page[Subscription], error)

	// Save persists the record guarded by its version column and returns
	// ErrConcurrentModification when another writer advanced it first.
	Save(ctx context.Context, db *gorm.DB, sub *Subscription) error

	// FindDue pages subscriptions whose billing period has elapsed and whose
	// status still admits advancement.
	FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Subscription, error)
}

type ListFilter struct {
	AccountID snowflake.ID
	Status    SubscriptionStatus
}
