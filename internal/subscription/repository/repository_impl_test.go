package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hubblehq/hubble/internal/subscription/domain"
)

func newTestDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Subscription{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return db, node
}

func seedSubscription(t *testing.T, db *gorm.DB, node *snowflake.Node, mutate func(*domain.Subscription)) domain.Subscription {
	t.Helper()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sub := domain.Subscription{
		ID:        node.Generate(),
		OwnerID:   node.Generate(),
		AccountID: node.Generate(),
		PlanID:    node.Generate(),
		Status:    domain.StatusActive,
		Quantity:  1,

		BillingPeriod:     1,
		BillingPeriodUnit: domain.UnitMonths,
		Renews:            true,

		StartsAt:           start,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),

		CreatedAt: start,
		UpdatedAt: start,
	}
	if mutate != nil {
		mutate(&sub)
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()
	ctx := context.Background()

	sub := seedSubscription(t, db, node, nil)

	first, err := r.FindByID(ctx, db, sub.OwnerID, sub.ID)
	require.NoError(t, err)
	second, err := r.FindByID(ctx, db, sub.OwnerID, sub.ID)
	require.NoError(t, err)

	first.Status = domain.StatusPending
	require.NoError(t, r.Save(ctx, db, first))
	assert.Equal(t, 1, first.Version)

	second.Status = domain.StatusHalted
	err = r.Save(ctx, db, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	// The failed save must not bump the in-memory version.
	assert.Equal(t, 0, second.Version)

	stored, err := r.FindByID(ctx, db, sub.OwnerID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestFindByIDScopedToOwner(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()
	ctx := context.Background()

	sub := seedSubscription(t, db, node, nil)

	found, err := r.FindByID(ctx, db, sub.OwnerID+1, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindDueSkipsInactiveAndFuturePeriods(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()
	ctx := context.Background()

	now := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	due := seedSubscription(t, db, node, nil)

	// Period still running.
	seedSubscription(t, db, node, func(s *domain.Subscription) {
		s.CurrentPeriodStart = now.AddDate(0, 0, -1)
		s.CurrentPeriodEnd = now.AddDate(0, 1, 0)
	})

	// Canceled, elapsed.
	seedSubscription(t, db, node, func(s *domain.Subscription) {
		cancelled := now.AddDate(0, 0, -2)
		s.Status = domain.StatusCanceled
		s.CancelledAt = &cancelled
	})

	// Paused, elapsed.
	seedSubscription(t, db, node, func(s *domain.Subscription) {
		paused := now.AddDate(0, 0, -2)
		s.Status = domain.StatusPaused
		s.PausedAt = &paused
	})

	found, err := r.FindDue(ctx, db, now, 50)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.ID, found[0].ID)
}

func TestFindDueHonorsLimit(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()
	ctx := context.Background()

	now := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedSubscription(t, db, node, nil)
	}

	found, err := r.FindDue(ctx, db, now, 3)
	require.NoError(t, err)
	assert.Len(t, found, 3)
}
