package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/clock"
	invoicedomain "github.com/hubblehq/hubble/internal/invoice/domain"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
	"github.com/hubblehq/hubble/internal/transaction/domain"
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

	invoiceSvc      invoicedomain.Service
	subscriptionSvc subscriptiondomain.Service
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository

	InvoiceSvc      invoicedomain.Service
	SubscriptionSvc subscriptiondomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("transaction.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		invoiceSvc:      p.InvoiceSvc,
		subscriptionSvc: p.SubscriptionSvc,
	}
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, req domain.CreateTransactionRequest) (domain.Transaction, error) {
	referenceID, err := snowflake.ParseString(strings.TrimSpace(req.ReferenceID))
	if err != nil {
		return domain.Transaction{}, invoicedomain.ErrInvoiceNotFound
	}

	// The reference must resolve to one of the owner's invoices.
	invoice, err := s.invoiceSvc.Get(ctx, ownerID, referenceID)
	if err != nil {
		return domain.Transaction{}, err
	}

	now := s.clock.Now(ctx)
	txn := domain.Transaction{
		ID:      s.genID.Generate(),
		OwnerID: ownerID,

		Amount:        req.Amount,
		Tax:           req.Tax,
		Comments:      strings.TrimSpace(req.Comments),
		Action:        req.Action,
		ReferenceID:   referenceID,
		PaymentMethod: req.PaymentMethod,
		Metadata:      req.Metadata,

		CreatedAt: now,
		UpdatedAt: now,
	}

	// The transaction record and the settlement it triggers commit together:
	// when marking the invoice paid or resolving the subscription fails,
	// nothing is persisted and the caller can safely retry.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &txn); err != nil {
			return err
		}
		if req.Action == domain.ActionPurchase {
			if _, err := s.invoiceSvc.MarkPaid(ctx, tx, ownerID, referenceID); err != nil {
				return err
			}
			if _, err := s.subscriptionSvc.MarkCollected(ctx, tx, ownerID, invoice.SubscriptionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.log.Info("transaction recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("action", string(txn.Action)),
		zap.Int64("amount", txn.Amount),
	)
	return txn, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id snowflake.ID) (domain.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if txn == nil {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}
	return *txn, nil
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID, req domain.ListTransactionRequest) (pagination.Page[domain.Transaction], error) {
	filter := domain.ListFilter{
		Action:        domain.TransactionAction(req.Action),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}
	if req.ReferenceID != "" {
		referenceID, err := snowflake.ParseString(req.ReferenceID)
		if err != nil {
			return pagination.Page[domain.Transaction]{}, domain.ErrTransactionNotFound
		}
		filter.ReferenceID = referenceID
	}

	return s.repo.List(ctx, s.db, ownerID, filter, pagination.Request{Page: req.Page, Limit: req.Limit})
}
