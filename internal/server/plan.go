package server

import (
	"github.com/gin-gonic/gin"
	plandomain "github.com/hubblehq/hubble/internal/plan/domain"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
)

type createPlanRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required,max=32"`
	Description string `json:"description"`

	BillingCyclePeriod     int    `json:"billingCyclePeriod" binding:"required,min=1"`
	BillingCyclePeriodUnit string `json:"billingCyclePeriodUnit" binding:"required,oneof=days months"`

	PricePerBillingCycle int64 `json:"pricePerBillingCycle" binding:"required,min=0"`
	SetupFee             int64 `json:"setupFee" binding:"min=0"`

	TotalBillingCycles int    `json:"totalBillingCycles" binding:"min=0"`
	TrialPeriod        int    `json:"trialPeriod" binding:"min=0"`
	TrialPeriodUnit    string `json:"trialPeriodUnit" binding:"omitempty,oneof=days months"`
	Renews             *bool  `json:"renews"`
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	trialUnit := subscriptiondomain.UnitDays
	if req.TrialPeriodUnit != "" {
		trialUnit = subscriptiondomain.PeriodUnit(req.TrialPeriodUnit)
	}
	renews := true
	if req.Renews != nil {
		renews = *req.Renews
	}

	plan, err := s.planSvc.Create(c.Request.Context(), currentUserID(c), plandomain.CreatePlanRequest{
		Name:                   req.Name,
		Code:                   req.Code,
		Description:            req.Description,
		BillingCyclePeriod:     req.BillingCyclePeriod,
		BillingCyclePeriodUnit: subscriptiondomain.PeriodUnit(req.BillingCyclePeriodUnit),
		PricePerBillingCycle:   req.PricePerBillingCycle,
		SetupFee:               req.SetupFee,
		TotalBillingCycles:     req.TotalBillingCycles,
		TrialPeriod:            req.TrialPeriod,
		TrialPeriodUnit:        trialUnit,
		Renews:                 renews,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondCreated(c, plan)
}

type listPlanQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=0"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

func (s *Server) ListPlans(c *gin.Context) {
	var q listPlanQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.planSvc.List(c.Request.Context(), currentUserID(c), plandomain.ListPlanRequest{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondList(c, page)
}

func (s *Server) GetPlan(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	plan, err := s.planSvc.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, plan)
}

type updatePlanRequest struct {
	Name                 string `json:"name" binding:"required"`
	Description          string `json:"description"`
	PricePerBillingCycle *int64 `json:"pricePerBillingCycle" binding:"omitempty,min=0"`
	SetupFee             *int64 `json:"setupFee" binding:"omitempty,min=0"`
	Renews               *bool  `json:"renews"`
}

func (s *Server) UpdatePlan(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	plan, err := s.planSvc.Update(c.Request.Context(), currentUserID(c), id, plandomain.UpdatePlanRequest{
		Name:                 req.Name,
		Description:          req.Description,
		PricePerBillingCycle: req.PricePerBillingCycle,
		SetupFee:             req.SetupFee,
		Renews:               req.Renews,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, plan)
}
