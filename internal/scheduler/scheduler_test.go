package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/hubblehq/hubble/internal/account/domain"
	accountrepo "github.com/hubblehq/hubble/internal/account/repository"
	"github.com/hubblehq/hubble/internal/config"
	invoicedomain "github.com/hubblehq/hubble/internal/invoice/domain"
	invoicerepo "github.com/hubblehq/hubble/internal/invoice/repository"
	invoiceservice "github.com/hubblehq/hubble/internal/invoice/service"
	plandomain "github.com/hubblehq/hubble/internal/plan/domain"
	planrepo "github.com/hubblehq/hubble/internal/plan/repository"
	"github.com/hubblehq/hubble/internal/sequence"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
	subscriptionrepo "github.com/hubblehq/hubble/internal/subscription/repository"
	subscriptionservice "github.com/hubblehq/hubble/internal/subscription/service"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
	userrepo "github.com/hubblehq/hubble/internal/user/repository"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now(context.Context) time.Time { return c.now }

type fixture struct {
	db        *gorm.DB
	clock     *stepClock
	scheduler *Scheduler

	owner userdomain.User
}

func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&accountdomain.Account{},
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := &stepClock{now: start}

	cfg := config.Config{Billing: config.BillingConfig{
		DefaultInvoicePrefix: "HUB",
		GracePeriodDays:      14,
		SweepBatchSize:       100,
	}}

	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     clk,
		Repo:      invoicerepo.Provide(),
		Allocator: sequence.NewAllocator(rdb, clk, log, time.Second),
		Cfg:       cfg,
	})

	subscriptionSvc := subscriptionservice.NewService(subscriptionservice.ServiceParam{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        subscriptionrepo.Provide(),
		AccountRepo: accountrepo.Provide(),
		PlanRepo:    planrepo.Provide(),
		UserRepo:    userrepo.Provide(),
		InvoiceSvc:  invoiceSvc,
	})

	sched, err := New(Param{
		Log:      log,
		Cfg:      cfg,
		DB:       db,
		Clock:    clk,
		Registry: prometheus.NewRegistry(),

		SubscriptionRepo: subscriptionrepo.Provide(),
		SubscriptionSvc:  subscriptionSvc,
		InvoiceRepo:      invoicerepo.Provide(),
	})
	require.NoError(t, err)

	f := &fixture{db: db, clock: clk, scheduler: sched}

	f.owner = userdomain.User{
		ID:            node.Generate(),
		FirstName:     "Ada",
		LastName:      "Hart",
		EmailAddress:  "ada@example.com",
		PasswordHash:  "x",
		Role:          userdomain.RoleRegularUser,
		InvoicePrefix: "ACME",
		CreatedAt:     start,
		UpdatedAt:     start,
	}
	require.NoError(t, db.Create(&f.owner).Error)

	account := accountdomain.Account{
		ID:        node.Generate(),
		OwnerID:   f.owner.ID,
		UserName:  "ada-corp",
		FirstName: "Ada",
		LastName:  "Hart",
		CreatedAt: start,
		UpdatedAt: start,
	}
	require.NoError(t, db.Create(&account).Error)

	plan := plandomain.Plan{
		ID:                     node.Generate(),
		OwnerID:                f.owner.ID,
		Name:                   "Team Monthly",
		Code:                   "team-monthly",
		BillingCyclePeriod:     1,
		BillingCyclePeriodUnit: subscriptiondomain.UnitMonths,
		PricePerBillingCycle:   5000,
		TrialPeriodUnit:        subscriptiondomain.UnitDays,
		Renews:                 true,
		CreatedAt:              start,
		UpdatedAt:              start,
	}
	require.NoError(t, db.Create(&plan).Error)

	sub := subscriptiondomain.Subscription{
		ID:        node.Generate(),
		OwnerID:   f.owner.ID,
		AccountID: account.ID,
		PlanID:    plan.ID,
		Status:    subscriptiondomain.StatusActive,
		Quantity:  1,

		BillingPeriod:     1,
		BillingPeriodUnit: subscriptiondomain.UnitMonths,
		Renews:            true,

		StartsAt:           start,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),

		ActivatedAt: &start,
		CreatedAt:   start,
		UpdatedAt:   start,
	}
	require.NoError(t, db.Create(&sub).Error)

	return f
}

func TestBillingSweepAdvancesDueSubscriptions(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, start)

	f.clock.now = start.AddDate(0, 1, 1)

	require.NoError(t, f.scheduler.BillingSweepJob(context.Background()))

	var subs []subscriptiondomain.Subscription
	require.NoError(t, f.db.Find(&subs).Error)
	require.Len(t, subs, 1)
	assert.Equal(t, subscriptiondomain.StatusPending, subs[0].Status)
	assert.Equal(t, 1, subs[0].CurrentBillingCycle)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A second sweep inside the new period issues nothing further.
	require.NoError(t, f.scheduler.BillingSweepJob(context.Background()))
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestOverdueJobHaltsSubscription(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, start)

	// Roll the period and issue the renewal invoice.
	f.clock.now = start.AddDate(0, 1, 1)
	require.NoError(t, f.scheduler.BillingSweepJob(context.Background()))

	// Move past the grace window.
	f.clock.now = start.AddDate(0, 2, 16)
	require.NoError(t, f.scheduler.OverdueInvoiceJob(context.Background()))

	var inv invoicedomain.Invoice
	require.NoError(t, f.db.Take(&inv).Error)
	assert.Equal(t, invoicedomain.StatusOverdue, inv.Status)
	assert.False(t, inv.UpdatedAt.Before(f.clock.now))

	var sub subscriptiondomain.Subscription
	require.NoError(t, f.db.Take(&sub).Error)
	assert.Equal(t, subscriptiondomain.StatusHalted, sub.Status)
	assert.False(t, sub.UpdatedAt.Before(f.clock.now))
}
