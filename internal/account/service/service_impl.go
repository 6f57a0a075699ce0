package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hubblehq/hubble/internal/account/domain"
	"github.com/hubblehq/hubble/internal/clock"
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
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, req domain.UpsertAccountRequest) (domain.Account, error) {
	userName := strings.TrimSpace(req.UserName)

	existing, err := s.repo.FindByUserName(ctx, s.db, ownerID, userName)
	if err != nil {
		return domain.Account{}, err
	}
	if existing != nil {
		return domain.Account{}, domain.ErrDuplicateUserName
	}

	now := s.clock.Now(ctx)
	account := domain.Account{
		ID:      s.genID.Generate(),
		OwnerID: ownerID,

		UserName:  userName,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),

		EmailAddress: strings.TrimSpace(req.EmailAddress),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		ZipCode:      req.ZipCode,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, s.db, &account); err != nil {
		return domain.Account{}, err
	}

	s.log.Info("account created", zap.String("account_id", account.ID.String()))
	return account, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id snowflake.ID) (domain.Account, error) {
	account, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.Account{}, err
	}
	if account == nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return *account, nil
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID, req domain.ListAccountRequest) (pagination.Page[domain.Account], error) {
	return s.repo.List(ctx, s.db, ownerID, strings.TrimSpace(req.Search), pagination.Request{
		Page:  req.Page,
		Limit: req.Limit,
	})
}

func (s *Service) Update(ctx context.Context, ownerID, id snowflake.ID, req domain.UpsertAccountRequest) (domain.Account, error) {
	account, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return domain.Account{}, err
	}
	if account == nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	userName := strings.TrimSpace(req.UserName)
	if userName != "" && userName != account.UserName {
		existing, err := s.repo.FindByUserName(ctx, s.db, ownerID, userName)
		if err != nil {
			return domain.Account{}, err
		}
		if existing != nil {
			return domain.Account{}, domain.ErrDuplicateUserName
		}
		account.UserName = userName
	}

	if req.FirstName != "" {
		account.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		account.LastName = strings.TrimSpace(req.LastName)
	}
	account.EmailAddress = strings.TrimSpace(req.EmailAddress)
	account.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	account.AddressLine1 = req.AddressLine1
	account.AddressLine2 = req.AddressLine2
	account.City = req.City
	account.State = req.State
	account.Country = req.Country
	account.ZipCode = req.ZipCode
	account.UpdatedAt = s.clock.Now(ctx)

	if err := s.repo.Update(ctx, s.db, account); err != nil {
		return domain.Account{}, err
	}
	return *account, nil
}
