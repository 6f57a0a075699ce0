package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
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
	"github.com/hubblehq/hubble/internal/transaction/domain"
	"github.com/hubblehq/hubble/internal/transaction/repository"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
	userrepo "github.com/hubblehq/hubble/internal/user/repository"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now(context.Context) time.Time { return c.now }

type harness struct {
	db    *gorm.DB
	clock *stepClock
	svc   domain.Service

	owner        userdomain.User
	subscription subscriptiondomain.Subscription
	invoice      invoicedomain.Invoice
}

func newHarness(t *testing.T, now time.Time) *harness {
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
		&domain.Transaction{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := &stepClock{now: now}

	cfg := config.Config{Billing: config.BillingConfig{
		DefaultInvoicePrefix: "HUB",
		GracePeriodDays:      14,
		AllocateTimeout:      time.Second,
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

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),

		InvoiceSvc:      invoiceSvc,
		SubscriptionSvc: subscriptionSvc,
	})

	h := &harness{db: db, clock: clk, svc: svc}

	h.owner = userdomain.User{
		ID:            node.Generate(),
		FirstName:     "Ada",
		LastName:      "Hart",
		EmailAddress:  "ada@example.com",
		PasswordHash:  "x",
		Role:          userdomain.RoleRegularUser,
		InvoicePrefix: "ACME",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&h.owner).Error)

	account := accountdomain.Account{
		ID:        node.Generate(),
		OwnerID:   h.owner.ID,
		UserName:  "ada-corp",
		FirstName: "Ada",
		LastName:  "Hart",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&account).Error)

	plan := plandomain.Plan{
		ID:                     node.Generate(),
		OwnerID:                h.owner.ID,
		Name:                   "Team Monthly",
		Code:                   "team-monthly",
		BillingCyclePeriod:     1,
		BillingCyclePeriodUnit: subscriptiondomain.UnitMonths,
		PricePerBillingCycle:   5000,
		TrialPeriodUnit:        subscriptiondomain.UnitDays,
		Renews:                 true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	require.NoError(t, db.Create(&plan).Error)

	periodStart := now.AddDate(0, -1, 0)
	h.subscription = subscriptiondomain.Subscription{
		ID:                  node.Generate(),
		OwnerID:             h.owner.ID,
		AccountID:           account.ID,
		PlanID:              plan.ID,
		Status:              subscriptiondomain.StatusPending,
		Quantity:            1,
		BillingPeriod:       1,
		BillingPeriodUnit:   subscriptiondomain.UnitMonths,
		CurrentBillingCycle: 1,
		Renews:              true,
		StartsAt:            periodStart,
		CurrentPeriodStart:  now,
		CurrentPeriodEnd:    now.AddDate(0, 1, 0),
		CreatedAt:           periodStart,
		UpdatedAt:           now,
	}
	require.NoError(t, db.Create(&h.subscription).Error)

	h.invoice = invoicedomain.Invoice{
		ID:             node.Generate(),
		OwnerID:        h.owner.ID,
		AccountID:      account.ID,
		SubscriptionID: h.subscription.ID,
		InvoiceNumber:  "ACME-20240701-0001",
		Status:         invoicedomain.StatusPending,
		Origin:         invoicedomain.OriginRenewal,
		Subtotal:       5000,
		Total:          5000,
		DueAt:          now.AddDate(0, 0, 14),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&h.invoice).Error)

	return h
}

func (h *harness) transactionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.db.Model(&domain.Transaction{}).Count(&count).Error)
	return count
}

func TestCreatePurchaseSettlesInvoiceAndSubscription(t *testing.T) {
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	txn, err := h.svc.Create(context.Background(), h.owner.ID, domain.CreateTransactionRequest{
		Amount:        5000,
		Action:        domain.ActionPurchase,
		ReferenceID:   h.invoice.ID.String(),
		PaymentMethod: domain.MethodCreditCard,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionPurchase, txn.Action)
	assert.Equal(t, int64(1), h.transactionCount(t))

	var inv invoicedomain.Invoice
	require.NoError(t, h.db.Take(&inv, "id = ?", h.invoice.ID).Error)
	assert.Equal(t, invoicedomain.StatusPaid, inv.Status)
	require.NotNil(t, inv.ClosedAt)

	var sub subscriptiondomain.Subscription
	require.NoError(t, h.db.Take(&sub, "id = ?", h.subscription.ID).Error)
	assert.Equal(t, subscriptiondomain.StatusActive, sub.Status)
}

func TestCreatePurchaseAgainstPaidInvoiceLeavesNoRecord(t *testing.T) {
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	require.NoError(t, h.db.Model(&invoicedomain.Invoice{}).
		Where("id = ?", h.invoice.ID).
		Update("status", invoicedomain.StatusPaid).Error)

	_, err := h.svc.Create(context.Background(), h.owner.ID, domain.CreateTransactionRequest{
		Amount:        5000,
		Action:        domain.ActionPurchase,
		ReferenceID:   h.invoice.ID.String(),
		PaymentMethod: domain.MethodCreditCard,
	})
	require.ErrorIs(t, err, invoicedomain.ErrInvalidStatusChange)

	// Settlement failure must roll the payment record back with it.
	assert.Equal(t, int64(0), h.transactionCount(t))
}

func TestCreateVerifyDoesNotSettle(t *testing.T) {
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, now)

	_, err := h.svc.Create(context.Background(), h.owner.ID, domain.CreateTransactionRequest{
		Amount:        0,
		Action:        domain.ActionVerify,
		ReferenceID:   h.invoice.ID.String(),
		PaymentMethod: domain.MethodOnline,
	})
	require.NoError(t, err)

	var inv invoicedomain.Invoice
	require.NoError(t, h.db.Take(&inv, "id = ?", h.invoice.ID).Error)
	assert.Equal(t, invoicedomain.StatusPending, inv.Status)

	var sub subscriptiondomain.Subscription
	require.NoError(t, h.db.Take(&sub, "id = ?", h.subscription.ID).Error)
	assert.Equal(t, subscriptiondomain.StatusPending, sub.Status)
}
