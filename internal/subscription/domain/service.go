package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, ownerID snowflake.ID, req CreateSubscriptionRequest) (Subscription, error)
	Get(ctx context.Context, ownerID, id snowflake.ID) (Subscription, error)
	List(ctx context.Context, ownerID snowflake.ID, req ListSubscriptionRequest) (pagination.Page[Subscription], error)

	Cancel(ctx context.Context, ownerID, id snowflake.ID) (Subscription, error)
	Pause(ctx context.Context, ownerID, id snowflake.ID) (Subscription, error)
	Resume(ctx context.Context, ownerID, id snowflake.ID) (Subscription, error)

	// Advance evaluates the subscription at now, commits any due rollover
	// together with its renewal invoice, and returns the refreshed record.
	// On ErrConcurrentModification the caller reloads and retries once.
	Advance(ctx context.Context, ownerID, id snowflake.ID) (Subscription, error)

	// MarkCollected resolves pending/halted collection state after a
	// successful payment for the current period. It runs on the caller's
	// open transaction handle.
	MarkCollected(ctx context.Context, tx *gorm.DB, ownerID, id snowflake.ID) (Subscription, error)
}

type CreateSubscriptionRequest struct {
	AccountID string
	PlanID    string
	Quantity  int
	StartsAt  time.Time

	// Overrides; zero values inherit the plan's billing configuration.
	BillingPeriod      int
	BillingPeriodUnit  PeriodUnit
	SetupFee           *int64
	TrialPeriod        *int
	TrialPeriodUnit    PeriodUnit
	TotalBillingCycles *int
	Renews             *bool
}

type ListSubscriptionRequest struct {
	Page      int
	Limit     int
	AccountID string
	Status    string
}
