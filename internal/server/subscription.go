package server

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
)

type createSubscriptionRequest struct {
	AccountID string     `json:"accountId" binding:"required,snowflakeid"`
	PlanID    string     `json:"planId" binding:"required,snowflakeid"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	StartsAt  *time.Time `json:"startsAt"`

	BillingPeriod      int    `json:"billingPeriod" binding:"omitempty,min=1"`
	BillingPeriodUnit  string `json:"billingPeriodUnit" binding:"omitempty,oneof=days months"`
	SetupFee           *int64 `json:"setupFee" binding:"omitempty,min=0"`
	TrialPeriod        *int   `json:"trialPeriod" binding:"omitempty,min=0"`
	TrialPeriodUnit    string `json:"trialPeriodUnit" binding:"omitempty,oneof=days months"`
	TotalBillingCycles *int   `json:"totalBillingCycles" binding:"omitempty,min=0"`
	Renews             *bool  `json:"renews"`
}

func (s *Server) CreateSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	var startsAt time.Time
	if req.StartsAt != nil {
		startsAt = *req.StartsAt
	}

	sub, err := s.subscriptionSvc.Create(c.Request.Context(), currentUserID(c), subscriptiondomain.CreateSubscriptionRequest{
		AccountID:          req.AccountID,
		PlanID:             req.PlanID,
		Quantity:           req.Quantity,
		StartsAt:           startsAt,
		BillingPeriod:      req.BillingPeriod,
		BillingPeriodUnit:  subscriptiondomain.PeriodUnit(req.BillingPeriodUnit),
		SetupFee:           req.SetupFee,
		TrialPeriod:        req.TrialPeriod,
		TrialPeriodUnit:    subscriptiondomain.PeriodUnit(req.TrialPeriodUnit),
		TotalBillingCycles: req.TotalBillingCycles,
		Renews:             req.Renews,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondCreated(c, sub)
}

type listSubscriptionQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=0"`
	Limit     int    `form:"limit"`
	AccountID string `form:"accountId"`
	Status    string `form:"status"`
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	var q listSubscriptionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.subscriptionSvc.List(c.Request.Context(), currentUserID(c), subscriptiondomain.ListSubscriptionRequest{
		Page:      q.Page,
		Limit:     q.Limit,
		AccountID: q.AccountID,
		Status:    q.Status,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondList(c, page)
}

func (s *Server) GetSubscription(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	sub, err := s.subscriptionSvc.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, sub)
}

func (s *Server) CancelSubscription(c *gin.Context) {
	s.transition(c, s.subscriptionSvc.Cancel)
}

func (s *Server) PauseSubscription(c *gin.Context) {
	s.transition(c, s.subscriptionSvc.Pause)
}

func (s *Server) ResumeSubscription(c *gin.Context) {
	s.transition(c, s.subscriptionSvc.Resume)
}

func (s *Server) transition(c *gin.Context, op func(ctx context.Context, ownerID, id snowflake.ID) (subscriptiondomain.Subscription, error)) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	sub, err := op(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, sub)
}
