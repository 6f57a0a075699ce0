package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
	"github.com/hubblehq/hubble/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound  = errors.New("plan: not found")
	ErrDuplicateCode = errors.New("plan: code already exists")
)

type Plan struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	OwnerID snowflake.ID `json:"ownerId" gorm:"column:owner_id;not null;index"`

	Name        string `json:"name" gorm:"type:text;not null"`
	Code        string `json:"code" gorm:"type:text;not null"`
	Description string `json:"description" gorm:"type:text"`

	BillingCyclePeriod     int                           `json:"billingCyclePeriod" gorm:"not null"`
	BillingCyclePeriodUnit subscriptiondomain.PeriodUnit `json:"billingCyclePeriodUnit" gorm:"type:text;not null"`

	// Monetary amounts are integer cents.
	PricePerBillingCycle int64 `json:"pricePerBillingCycle" gorm:"not null"`
	SetupFee             int64 `json:"setupFee" gorm:"not null;default:0"`

	TotalBillingCycles int                           `json:"totalBillingCycles" gorm:"not null;default:0"`
	TrialPeriod        int                           `json:"trialPeriod" gorm:"not null;default:0"`
	TrialPeriodUnit    subscriptiondomain.PeriodUnit `json:"trialPeriodUnit" gorm:"type:text;not null;default:'days'"`
	Renews             bool                          `json:"renews" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

func (Plan) TableName() string { return "plans" }

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Plan, error)
	FindByCode(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, code string) (*Plan, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, search string, page pagination.Request) (pagination.Page[Plan], error)
	Update(ctx context.Context, db *gorm.DB, plan *Plan) error
}

type Service interface {
	Create(ctx context.Context, ownerID snowflake.ID, req CreatePlanRequest) (Plan, error)
	Get(ctx context.Context, ownerID, id snowflake.ID) (Plan, error)
	List(ctx context.Context, ownerID snowflake.ID, req ListPlanRequest) (pagination.Page[Plan], error)
	Update(ctx context.Context, ownerID, id snowflake.ID, req UpdatePlanRequest) (Plan, error)
}

type CreatePlanRequest struct {
	Name                   string
	Code                   string
	Description            string
	BillingCyclePeriod     int
	BillingCyclePeriodUnit subscriptiondomain.PeriodUnit
	PricePerBillingCycle   int64
	SetupFee               int64
	TotalBillingCycles     int
	TrialPeriod            int
	TrialPeriodUnit        subscriptiondomain.PeriodUnit
	Renews                 bool
}

type UpdatePlanRequest struct {
	Name                 string
	Description          string
	PricePerBillingCycle *int64
	SetupFee             *int64
	Renews               *bool
}

type ListPlanRequest struct {
	Page   int
	Limit  int
	Search string
}
