package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/hubblehq/hubble/internal/account/domain"
	"github.com/hubblehq/hubble/internal/clock"
	invoicedomain "github.com/hubblehq/hubble/internal/invoice/domain"
	plandomain "github.com/hubblehq/hubble/internal/plan/domain"
	"github.com/hubblehq/hubble/internal/subscription/domain"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock

	repo        domain.Repository
	accountRepo accountdomain.Repository
	planRepo    plandomain.Repository
	userRepo    userdomain.Repository

	invoiceSvc invoicedomain.Service
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock

	Repo        domain.Repository
	AccountRepo accountdomain.Repository
	PlanRepo    plandomain.Repository
	UserRepo    userdomain.Repository

	InvoiceSvc invoicedomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("subscription.service"),

		genID: p.GenID,
		clock: p.Clock,

		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		planRepo:    p.PlanRepo,
		userRepo:    p.UserRepo,

		invoiceSvc: p.InvoiceSvc,
	}
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	if req.Quantity <= 0 {
		return domain.Subscription{}, domain.ErrInvalidQuantity
	}

	accountID, err := snowflake.ParseString(strings.TrimSpace(req.AccountID))
	if err != nil {
		return domain.Subscription{}, domain.ErrInvalidAccount
	}
	planID, err := snowflake.ParseString(strings.TrimSpace(req.PlanID))
	if err != nil {
		return domain.Subscription{}, domain.ErrInvalidPlan
	}

	// Ownership consistency: the account and plan must belong to the same
	// owner as the subscription. Enforced at creation only.
	account, err := s.accountRepo.FindByID(ctx, s.db, ownerID, accountID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if account == nil {
		return domain.Subscription{}, domain.ErrInvalidAccount
	}
	plan, err := s.planRepo.FindByID(ctx, s.db, ownerID, planID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if plan == nil {
		return domain.Subscription{}, domain.ErrInvalidPlan
	}

	now := s.clock.Now(ctx)
	startsAt := req.StartsAt
	if startsAt.IsZero() {
		startsAt = now
	}

	sub := domain.Subscription{
		ID:        s.genID.Generate(),
		OwnerID:   ownerID,
		AccountID: accountID,
		PlanID:    planID,
		Status:    domain.StatusNew,
		Quantity:  req.Quantity,

		BillingPeriod:      plan.BillingCyclePeriod,
		BillingPeriodUnit:  plan.BillingCyclePeriodUnit,
		SetupFee:           plan.SetupFee,
		TotalBillingCycles: plan.TotalBillingCycles,
		Renews:             plan.Renews,

		StartsAt:  startsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Request overrides beat plan defaults, as in the original API.
	if req.BillingPeriod > 0 {
		sub.BillingPeriod = req.BillingPeriod
		sub.BillingPeriodUnit = req.BillingPeriodUnit
	}
	if req.SetupFee != nil {
		sub.SetupFee = *req.SetupFee
	}
	if req.TotalBillingCycles != nil {
		sub.TotalBillingCycles = *req.TotalBillingCycles
	}
	if req.Renews != nil {
		sub.Renews = *req.Renews
	}

	trialPeriod := plan.TrialPeriod
	trialUnit := plan.TrialPeriodUnit
	if req.TrialPeriod != nil {
		trialPeriod = *req.TrialPeriod
		trialUnit = req.TrialPeriodUnit
	}
	if trialPeriod > 0 {
		trialEnd := domain.AddPeriod(startsAt, trialPeriod, trialUnit)
		sub.TrialStart = &startsAt
		sub.TrialEnd = &trialEnd
	}

	sub.CurrentPeriodStart = startsAt
	sub.CurrentPeriodEnd = domain.AddPeriod(startsAt, sub.BillingPeriod, sub.BillingPeriodUnit)

	if err := s.repo.Create(ctx, s.db, &sub); err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("plan_id", planID.String()),
	)
	return sub, nil
}

// Get returns the subscription with its status evaluated at read time. The
// evaluation is display-only; rollovers are committed by Advance.
func (s *Service) Get(ctx context.Context, ownerID, id snowflake.ID) (domain.Subscription, error) {
	sub, err := s.load(ctx, ownerID, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	eval, err := domain.Evaluate(*sub, s.clock.Now(ctx))
	if err != nil {
		return domain.Subscription{}, err
	}
	sub.Status = eval.Status
	return *sub, nil
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID, req domain.ListSubscriptionRequest) (pagination.Page[domain.Subscription], error) {
	filter := domain.ListFilter{}
	if req.AccountID != "" {
		accountID, err := snowflake.ParseString(req.AccountID)
		if err != nil {
			return pagination.Page[domain.Subscription]{}, domain.ErrInvalidAccount
		}
		filter.AccountID = accountID
	}
	if req.Status != "" {
		filter.Status = domain.SubscriptionStatus(req.Status)
	}

	return s.repo.List(ctx, s.db, ownerID, filter, pagination.Request{Page: req.Page, Limit: req.Limit})
}

func (s *Service) Cancel(ctx context.Context, ownerID, id snowflake.ID) (domain.Subscription, error) {
	sub, err := s.load(ctx, ownerID, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub.Status.Terminal() || sub.CancelledAt != nil {
		return domain.Subscription{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now(ctx)
	sub.CancelledAt = &now
	sub.Status = domain.StatusCanceled
	sub.UpdatedAt = now

	if err := s.repo.Save(ctx, s.db, sub); err != nil {
		return domain.Subscription{}, err
	}
	s.log.Info("subscription canceled", zap.String("subscription_id", sub.ID.String()))
	return *sub, nil
}

func (s *Service) Pause(ctx context.Context, ownerID, id snowflake.ID) (domain.Subscription, error) {
	sub, err := s.load(ctx, ownerID, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub.Status.Terminal() || sub.CancelledAt != nil || sub.PausedAt != nil {
		return domain.Subscription{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now(ctx)
	sub.PausedAt = &now
	sub.Status = domain.StatusPaused
	sub.UpdatedAt = now

	if err := s.repo.Save(ctx, s.db, sub); err != nil {
		return domain.Subscription{}, err
	}
	s.log.Info("subscription paused", zap.String("subscription_id", sub.ID.String()))
	return *sub, nil
}

func (s *Service) Resume(ctx context.Context, ownerID, id snowflake.ID) (domain.Subscription, error) {
	sub, err := s.load(ctx, ownerID, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub.PausedAt == nil {
		return domain.Subscription{}, domain.ErrInvalidTransition
	}

	now := s.clock.Now(ctx)
	sub.PausedAt = nil

	eval, err := domain.Evaluate(*sub, now)
	if err != nil {
		return domain.Subscription{}, err
	}
	sub.Status = eval.Status
	sub.UpdatedAt = now

	if err := s.repo.Save(ctx, s.db, sub); err != nil {
		return domain.Subscription{}, err
	}
	s.log.Info("subscription resumed", zap.String("subscription_id", sub.ID.String()))
	return *sub, nil
}

// Advance evaluates the subscription and commits any due rollover together
// with its renewal invoice in a single transaction. Either both the cycle
// advance and the numbered invoice commit, or neither does.
func (s *Service) Advance(ctx context.Context, ownerID, id snowflake.ID) (domain.Subscription, error) {
	sub, err := s.load(ctx, ownerID, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	now := s.clock.Now(ctx)
	eval, err := domain.Evaluate(*sub, now)
	if err != nil {
		return domain.Subscription{}, err
	}

	if eval.Rollover == nil {
		if eval.Status == sub.Status {
			// No boundary crossed; re-evaluation is a no-op.
			return *sub, nil
		}
		if sub.ActivatedAt == nil && (eval.Status == domain.StatusActive || eval.Status == domain.StatusInTrial) {
			sub.ActivatedAt = &now
		}
		sub.Status = eval.Status
		sub.UpdatedAt = now
		if err := s.repo.Save(ctx, s.db, sub); err != nil {
			return domain.Subscription{}, err
		}
		return *sub, nil
	}

	plan, err := s.planRepo.FindByID(ctx, s.db, ownerID, sub.PlanID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if plan == nil {
		return domain.Subscription{}, domain.ErrInvalidPlan
	}
	owner, err := s.userRepo.FindByID(ctx, s.db, ownerID)
	if err != nil {
		return domain.Subscription{}, err
	}

	prefix := ""
	if owner != nil {
		prefix = owner.InvoicePrefix
	}

	rollover := *eval.Rollover
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		domain.ApplyRollover(sub, rollover)
		if sub.ActivatedAt == nil {
			sub.ActivatedAt = &now
		}
		sub.UpdatedAt = now
		if err := s.repo.Save(ctx, tx, sub); err != nil {
			return err
		}

		_, err := s.invoiceSvc.GenerateRenewal(ctx, tx, invoicedomain.RenewalInput{
			OwnerID:        sub.OwnerID,
			AccountID:      sub.AccountID,
			SubscriptionID: sub.ID,
			PlanID:         plan.ID,
			Prefix:         prefix,
			PlanName:       plan.Name,
			Quantity:       sub.Quantity,
			PricePerUnit:   plan.PricePerBillingCycle,
			PeriodStart:    rollover.ElapsedStart,
			PeriodEnd:      rollover.ElapsedEnd,
		})
		return err
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("billing cycle advanced",
		zap.String("subscription_id", sub.ID.String()),
		zap.Int("cycle", sub.CurrentBillingCycle),
		zap.Time("period_end", sub.CurrentPeriodEnd),
	)
	return *sub, nil
}

// MarkCollected resolves pending or halted collection state after payment,
// on the caller's transaction handle.
func (s *Service) MarkCollected(ctx context.Context, tx *gorm.DB, ownerID, id snowflake.ID) (domain.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, tx, ownerID, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub == nil {
		return domain.Subscription{}, domain.ErrSubscriptionNotFound
	}
	if sub.Status != domain.StatusPending && sub.Status != domain.StatusHalted {
		return *sub, nil
	}

	sub.Status = domain.StatusActive
	sub.UpdatedAt = s.clock.Now(ctx)

	if err := s.repo.Save(ctx, tx, sub); err != nil {
		return domain.Subscription{}, err
	}
	return *sub, nil
}

func (s *Service) load(ctx context.Context, ownerID, id snowflake.ID) (*domain.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}
