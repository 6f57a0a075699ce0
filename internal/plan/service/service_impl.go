package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/clock"
	"github.com/hubblehq/hubble/internal/plan/domain"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, req domain.CreatePlanRequest) (domain.Plan, error) {
	code := strings.TrimSpace(req.Code)

	existing, err := s.repo.FindByCode(ctx, s.db, ownerID, code)
	if err != nil {
		return domain.Plan{}, err
	}
	if existing != nil {
		return domain.Plan{}, domain.ErrDuplicateCode
	}

	now := s.clock.Now(ctx)
	plan := domain.Plan{
		ID:      s.genID.Generate(),
		OwnerID: ownerID,

		Name:        strings.TrimSpace(req.Name),
		Code:        code,
		Description: strings.TrimSpace(req.Description),

		BillingCyclePeriod:     req.BillingCyclePeriod,
		BillingCyclePeriodUnit: req.BillingCyclePeriodUnit,
		PricePerBillingCycle:   req.PricePerBillingCycle,
		SetupFee:               req.SetupFee,
		TotalBillingCycles:     req.TotalBillingCycles,
		TrialPeriod:            req.TrialPeriod,
		TrialPeriodUnit:        req.TrialPeriodUnit,
		Renews:                 req.Renews,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if plan.TrialPeriodUnit == "" {
		plan.TrialPeriodUnit = subscriptiondomain.UnitDays
	}

	if err := s.repo.Create(ctx, s.db, &plan); err != nil {
		return domain.Plan{}, err
	}

	s.log.Info("plan created", zap.String("plan_id", plan.ID.String()), zap.String("code", plan.Code))
	return plan, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id snowflake.ID) (domain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.Plan{}, err
	}
	if plan == nil {
		return domain.Plan{}, domain.ErrPlanNotFound
	}
	return *plan, nil
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID, req domain.ListPlanRequest) (pagination.Page[domain.Plan], error) {
	return s.repo.List(ctx, s.db, ownerID, strings.TrimSpace(req.Search), pagination.Request{
		Page:  req.Page,
		Limit: req.Limit,
	})
}

func (s *Service) Update(ctx context.Context, ownerID, id snowflake.ID, req domain.UpdatePlanRequest) (domain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.Plan{}, err
	}
	if plan == nil {
		return domain.Plan{}, domain.ErrPlanNotFound
	}

	if req.Name != "" {
		plan.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		plan.Description = strings.TrimSpace(req.Description)
	}
	if req.PricePerBillingCycle != nil {
		plan.PricePerBillingCycle = *req.PricePerBillingCycle
	}
	if req.SetupFee != nil {
		plan.SetupFee = *req.SetupFee
	}
	if req.Renews != nil {
		plan.Renews = *req.Renews
	}
	plan.UpdatedAt = s.clock.Now(ctx)

	if err := s.repo.Update(ctx, s.db, plan); err != nil {
		return domain.Plan{}, err
	}
	return *plan, nil
}
