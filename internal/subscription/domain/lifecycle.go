package domain

import (
	"fmt"
	"time"
)

// Rollover describes the period advancement a due subscription should
// commit: the next cycle number and billing window, plus the elapsed window
// the renewal invoice must cover.
type Rollover struct {
	Cycle       int
	PeriodStart time.Time
	PeriodEnd   time.Time

	ElapsedStart time.Time
	ElapsedEnd   time.Time
}

// Evaluation is the lifecycle engine's verdict for a subscription at a given
// instant. Rollover is non-nil exactly when the current billing period has
// elapsed and a renewal should be committed by the caller.
type Evaluation struct {
	Status   SubscriptionStatus
	Rollover *Rollover
}

// Evaluate computes the subscription's status as a pure function of its
// stored attributes and now. Rules apply in precedence order; the first
// match wins.
func Evaluate(sub Subscription, now time.Time) (Evaluation, error) {
	if err := checkDates(sub); err != nil {
		return Evaluation{}, err
	}

	if sub.CancelledAt != nil {
		return Evaluation{Status: StatusCanceled}, nil
	}
	if sub.PausedAt != nil {
		return Evaluation{Status: StatusPaused}, nil
	}
	if now.Before(sub.StartsAt) {
		return Evaluation{Status: StatusFuture}, nil
	}
	if sub.TrialStart != nil && sub.TrialEnd != nil &&
		!now.Before(*sub.TrialStart) && now.Before(*sub.TrialEnd) {
		return Evaluation{Status: StatusInTrial}, nil
	}
	if exhausted(sub) {
		return Evaluation{Status: StatusExpired}, nil
	}
	if !now.Before(sub.CurrentPeriodEnd) {
		// Billing boundary crossed: collection for the new period has not
		// succeeded yet, so the subscription sits in pending until the
		// renewal invoice settles.
		return Evaluation{
			Status:   StatusPending,
			Rollover: nextRollover(sub),
		}, nil
	}
	if sub.Status == StatusPending || sub.Status == StatusHalted {
		// Collection trouble inside the current window persists until a
		// payment resolves it.
		return Evaluation{Status: sub.Status}, nil
	}
	return Evaluation{Status: StatusActive}, nil
}

func checkDates(sub Subscription) error {
	if sub.TrialStart != nil && sub.TrialEnd != nil && sub.TrialEnd.Before(*sub.TrialStart) {
		return fmt.Errorf("%w: trial end %s before trial start %s",
			ErrInvalidLifecycleState, sub.TrialEnd.Format(time.RFC3339), sub.TrialStart.Format(time.RFC3339))
	}
	if (sub.TrialStart == nil) != (sub.TrialEnd == nil) {
		return fmt.Errorf("%w: trial window is half-open", ErrInvalidLifecycleState)
	}
	if sub.CurrentPeriodEnd.Before(sub.CurrentPeriodStart) {
		return fmt.Errorf("%w: period end %s before period start %s",
			ErrInvalidLifecycleState, sub.CurrentPeriodEnd.Format(time.RFC3339), sub.CurrentPeriodStart.Format(time.RFC3339))
	}
	return nil
}

func exhausted(sub Subscription) bool {
	return sub.TotalBillingCycles > 0 &&
		sub.CurrentBillingCycle >= sub.TotalBillingCycles &&
		!sub.Renews
}

func nextRollover(sub Subscription) *Rollover {
	cycle := sub.CurrentBillingCycle + 1
	if sub.TotalBillingCycles > 0 && cycle > sub.TotalBillingCycles && sub.Renews {
		// Renewal into a fresh term: the cycle counter restarts so it never
		// exceeds the configured bound.
		cycle = 1
	}
	start := sub.CurrentPeriodEnd
	return &Rollover{
		Cycle:        cycle,
		PeriodStart:  start,
		PeriodEnd:    AddPeriod(start, sub.BillingPeriod, sub.BillingPeriodUnit),
		ElapsedStart: sub.CurrentPeriodStart,
		ElapsedEnd:   sub.CurrentPeriodEnd,
	}
}

// ApplyRollover folds a committed rollover into the subscription record.
func ApplyRollover(sub *Subscription, r Rollover) {
	sub.CurrentBillingCycle = r.Cycle
	sub.CurrentPeriodStart = r.PeriodStart
	sub.CurrentPeriodEnd = r.PeriodEnd
	sub.Status = StatusPending
}
