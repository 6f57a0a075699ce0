package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/clock"
	"github.com/hubblehq/hubble/internal/config"
	"github.com/hubblehq/hubble/internal/invoice/domain"
	"github.com/hubblehq/hubble/internal/sequence"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	allocator *sequence.Allocator

	gracePeriodDays int
	defaultPrefix   string
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Allocator *sequence.Allocator
	Cfg       config.Config
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		allocator: p.Allocator,

		gracePeriodDays: p.Cfg.Billing.GracePeriodDays,
		defaultPrefix:   p.Cfg.Billing.DefaultInvoicePrefix,
	}
}

func (s *Service) Get(ctx context.Context, ownerID, id snowflake.ID) (domain.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv == nil {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	return *inv, nil
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID, req domain.ListInvoiceRequest) (pagination.Page[domain.Invoice], error) {
	filter := domain.ListFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Search:    strings.TrimSpace(req.Search),
	}
	if req.AccountID != "" {
		accountID, err := snowflake.ParseString(req.AccountID)
		if err != nil {
			return pagination.Page[domain.Invoice]{}, domain.ErrInvoiceNotFound
		}
		filter.AccountID = accountID
	}
	if req.Status != "" {
		filter.Status = domain.InvoiceStatus(req.Status)
	}

	return s.repo.List(ctx, s.db, ownerID, filter, pagination.Request{Page: req.Page, Limit: req.Limit})
}

func (s *Service) Update(ctx context.Context, ownerID, id snowflake.ID, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv == nil {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}

	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if req.TermsAndConditions != nil {
		inv.TermsAndConditions = *req.TermsAndConditions
	}
	inv.UpdatedAt = s.clock.Now(ctx)

	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}

// GenerateRenewal builds and persists the invoice for an elapsed billing
// period inside the caller's transaction. Number allocation happens first:
// when the counter store is unreachable, the whole renewal aborts and the
// caller's transaction rolls back.
func (s *Service) GenerateRenewal(ctx context.Context, tx *gorm.DB, in domain.RenewalInput) (domain.Invoice, error) {
	prefix := strings.TrimSpace(in.Prefix)
	if prefix == "" {
		prefix = s.defaultPrefix
	}

	number, err := s.allocator.Allocate(ctx, prefix, in.OwnerID.String())
	if err != nil {
		return domain.Invoice{}, err
	}

	now := s.clock.Now(ctx)
	subtotal := in.PricePerUnit * int64(in.Quantity)
	if subtotal < 0 {
		return domain.Invoice{}, fmt.Errorf("invoice: negative subtotal for subscription %s", in.SubscriptionID)
	}

	invoice := domain.Invoice{
		ID:             s.genID.Generate(),
		OwnerID:        in.OwnerID,
		AccountID:      in.AccountID,
		SubscriptionID: in.SubscriptionID,
		InvoiceNumber:  number,
		Status:         domain.StatusPending,
		Origin:         domain.OriginRenewal,
		Subtotal:       subtotal,
		Tax:            in.Tax,
		Total:          subtotal + in.Tax,
		DueAt:          in.PeriodEnd.AddDate(0, 0, s.gracePeriodDays),
		CreatedAt:      now,
		UpdatedAt:      now,
		Items: []domain.InvoiceItem{
			{
				ID:          s.genID.Generate(),
				ReferenceID: in.PlanID,
				Type:        "plan",
				Description: fmt.Sprintf("%s (renewal)", in.PlanName),
				Quantity:    in.Quantity,
				StartedAt:   in.PeriodStart,
				EndedAt:     in.PeriodEnd,
				Subtotal:    subtotal,
				Total:       subtotal,
			},
		},
	}

	if err := s.repo.Create(ctx, tx, &invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("renewal invoice generated",
		zap.String("invoice_number", number),
		zap.String("subscription_id", in.SubscriptionID.String()),
		zap.Int64("total", invoice.Total),
	)
	return invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, tx *gorm.DB, ownerID, id snowflake.ID) (domain.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, tx, ownerID, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv == nil {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}

	switch inv.Status {
	case domain.StatusPending, domain.StatusProcessing, domain.StatusOverdue, domain.StatusFailed:
	default:
		return domain.Invoice{}, domain.ErrInvalidStatusChange
	}

	now := s.clock.Now(ctx)
	inv.Status = domain.StatusPaid
	inv.ClosedAt = &now
	inv.UpdatedAt = now

	if err := s.repo.Update(ctx, tx, inv); err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}
