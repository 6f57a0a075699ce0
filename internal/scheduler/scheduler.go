package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hubblehq/hubble/internal/clock"
	"github.com/hubblehq/hubble/internal/config"
	invoicedomain "github.com/hubblehq/hubble/internal/invoice/domain"
	"github.com/hubblehq/hubble/internal/sequence"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
)

type Scheduler struct {
	log   *zap.Logger
	cfg   config.Config
	db    *gorm.DB
	clock clock.Clock

	subscriptionRepo subscriptiondomain.Repository
	subscriptionSvc  subscriptiondomain.Service
	invoiceRepo      invoicedomain.Repository

	sweepRuns           prometheus.Counter
	subscriptionsSwept  prometheus.Counter
	allocationFailures  prometheus.Counter
	invoicesMadeOverdue prometheus.Counter
}

type Param struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	DB       *gorm.DB
	Clock    clock.Clock
	Registry *prometheus.Registry

	SubscriptionRepo subscriptiondomain.Repository
	SubscriptionSvc  subscriptiondomain.Service
	InvoiceRepo      invoicedomain.Repository
}

func New(p Param) (*Scheduler, error) {
	s := &Scheduler{
		log:   p.Log.Named("scheduler"),
		cfg:   p.Cfg,
		db:    p.DB,
		clock: p.Clock,

		subscriptionRepo: p.SubscriptionRepo,
		subscriptionSvc:  p.SubscriptionSvc,
		invoiceRepo:      p.InvoiceRepo,

		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hubble_billing_sweep_runs_total",
			Help: "Completed billing sweep iterations.",
		}),
		subscriptionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hubble_billing_subscriptions_advanced_total",
			Help: "Subscriptions advanced by the billing sweep.",
		}),
		allocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hubble_invoice_allocation_failures_total",
			Help: "Renewals skipped because an invoice number could not be allocated.",
		}),
		invoicesMadeOverdue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hubble_invoices_overdue_total",
			Help: "Invoices moved to overdue past their due date.",
		}),
	}

	for _, c := range []prometheus.Collector{
		s.sweepRuns, s.subscriptionsSwept, s.allocationFailures, s.invoicesMadeOverdue,
	} {
		if err := p.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// BillingSweepJob advances every subscription whose period has elapsed. Each
// subscription is handled independently so one failure never stalls the
// batch.
func (s *Scheduler) BillingSweepJob(ctx context.Context) error {
	now := s.clock.Now(ctx)

	due, err := s.subscriptionRepo.FindDue(ctx, s.db, now, s.cfg.Billing.SweepBatchSize)
	if err != nil {
		return err
	}

	for _, sub := range due {
		if err := s.advance(ctx, sub); err != nil {
			s.log.Warn("subscription advance failed",
				zap.Int64("subscription_id", int64(sub.ID)),
				zap.Error(err),
			)
			continue
		}
		s.subscriptionsSwept.Inc()
	}

	s.sweepRuns.Inc()
	return nil
}

func (s *Scheduler) advance(ctx context.Context, sub subscriptiondomain.Subscription) error {
	_, err := s.subscriptionSvc.Advance(ctx, sub.OwnerID, sub.ID)
	if errors.Is(err, subscriptiondomain.ErrConcurrentModification) {
		// Another writer moved the record; reload-and-retry once, then let
		// the next sweep pick it up.
		_, err = s.subscriptionSvc.Advance(ctx, sub.OwnerID, sub.ID)
	}
	if errors.Is(err, sequence.ErrAllocationFailure) {
		s.allocationFailures.Inc()
	}
	return err
}

// OverdueInvoiceJob flags unpaid invoices past their due date and halts the
// subscriptions they bill.
func (s *Scheduler) OverdueInvoiceJob(ctx context.Context) error {
	now := s.clock.Now(ctx)

	invoices, err := s.invoiceRepo.FindOverdue(ctx, s.db, now, s.cfg.Billing.SweepBatchSize)
	if err != nil {
		return err
	}

	for i := range invoices {
		inv := &invoices[i]
		if err := s.markOverdue(ctx, inv); err != nil {
			s.log.Warn("overdue transition failed",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			continue
		}
		s.invoicesMadeOverdue.Inc()
	}
	return nil
}

func (s *Scheduler) markOverdue(ctx context.Context, inv *invoicedomain.Invoice) error {
	now := s.clock.Now(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv.Status = invoicedomain.StatusOverdue
		inv.UpdatedAt = now
		if err := s.invoiceRepo.Update(ctx, tx, inv); err != nil {
			return err
		}

		sub, err := s.subscriptionRepo.FindByID(ctx, tx, inv.OwnerID, inv.SubscriptionID)
		if err != nil {
			return err
		}
		if sub == nil || sub.Status.Terminal() {
			return nil
		}

		sub.Status = subscriptiondomain.StatusHalted
		sub.UpdatedAt = now
		return s.subscriptionRepo.Save(ctx, tx, sub)
	})
}

// RunForever ticks both jobs until the context is cancelled. The first sweep
// runs immediately so restarts never wait out a full interval.
func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.cfg.Billing.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.BillingSweepJob(ctx); err != nil {
		s.log.Error("billing sweep failed", zap.Error(err))
	}
	if err := s.OverdueInvoiceJob(ctx); err != nil {
		s.log.Error("overdue invoice job failed", zap.Error(err))
	}
}
