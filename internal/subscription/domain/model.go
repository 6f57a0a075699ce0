package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type SubscriptionStatus string

const (
	// StatusNew marks a subscription created but never evaluated. The
	// lifecycle engine never returns it.
	StatusNew      SubscriptionStatus = "new"
	StatusFuture   SubscriptionStatus = "future"
	StatusInTrial  SubscriptionStatus = "in_trial"
	StatusActive   SubscriptionStatus = "active"
	StatusPending  SubscriptionStatus = "pending"
	StatusHalted   SubscriptionStatus = "halted"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusExpired  SubscriptionStatus = "expired"
	StatusPaused   SubscriptionStatus = "paused"
)

type PeriodUnit string

const (
	UnitDays   PeriodUnit = "days"
	UnitMonths PeriodUnit = "months"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription: not found")
	ErrInvalidAccount       = errors.New("subscription: invalid account")
	ErrInvalidPlan          = errors.New("subscription: invalid plan")
	ErrInvalidQuantity      = errors.New("subscription: quantity must be positive")

	// ErrInvalidLifecycleState flags corrupt stored dates. The record needs
	// manual correction; evaluation refuses to guess.
	ErrInvalidLifecycleState = errors.New("subscription: invalid lifecycle state")

	// ErrInvalidTransition rejects an operation illegal in the current
	// status, such as resuming a subscription that is not paused.
	ErrInvalidTransition = errors.New("subscription: invalid transition")

	// ErrConcurrentModification reports an optimistic-concurrency conflict
	// on save. Reload and re-evaluate once.
	ErrConcurrentModification = errors.New("subscription: concurrent modification")
)

type Subscription struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	OwnerID   snowflake.ID `json:"ownerId" gorm:"column:owner_id;not null;index"`
	AccountID snowflake.ID `json:"accountId" gorm:"column:account_id;not null;index"`
	PlanID    snowflake.ID `json:"planId" gorm:"column:plan_id;not null;index"`

	Status   SubscriptionStatus `json:"status" gorm:"type:text;not null"`
	Quantity int                `json:"quantity" gorm:"not null"`

	BillingPeriod     int        `json:"billingPeriod" gorm:"not null"`
	BillingPeriodUnit PeriodUnit `json:"billingPeriodUnit" gorm:"type:text;not null"`
	SetupFee          int64      `json:"setupFee" gorm:"not null;default:0"`

	TrialStart *time.Time `json:"trialStart"`
	TrialEnd   *time.Time `json:"trialEnd"`

	// TotalBillingCycles of zero means unbounded, provided Renews is true.
	TotalBillingCycles  int  `json:"totalBillingCycles" gorm:"not null;default:0"`
	CurrentBillingCycle int  `json:"currentBillingCycle" gorm:"not null;default:0"`
	Renews              bool `json:"renews" gorm:"not null;default:true"`

	StartsAt           time.Time `json:"startsAt" gorm:"not null"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart" gorm:"not null"`
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd" gorm:"not null;index"`

	ActivatedAt *time.Time `json:"activatedAt"`
	CancelledAt *time.Time `json:"cancelledAt"`
	PausedAt    *time.Time `json:"pausedAt"`

	// Version backs optimistic concurrency on lifecycle advancement.
	Version   int       `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Terminal reports whether the status admits no further transitions.
func (s SubscriptionStatus) Terminal() bool {
	return s == StatusCanceled || s == StatusExpired
}

// AddPeriod advances t by n units of the billing calendar.
func AddPeriod(t time.Time, n int, unit PeriodUnit) time.Time {
	if unit == UnitMonths {
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}
