package server

import (
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/hubblehq/hubble/internal/invoice/domain"
)

type listInvoiceQuery struct {
	Page      int        `form:"page" binding:"omitempty,min=0"`
	Limit     int        `form:"limit"`
	AccountID string     `form:"accountId"`
	Status    string     `form:"status" binding:"omitempty,oneof=pending overdue cancelled paid processing failed"`
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02"`
	Search    string     `form:"search"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var q listInvoiceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.invoiceSvc.List(c.Request.Context(), currentUserID(c), invoicedomain.ListInvoiceRequest{
		Page:      q.Page,
		Limit:     q.Limit,
		AccountID: q.AccountID,
		Status:    q.Status,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Search:    q.Search,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondList(c, page)
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	invoice, err := s.invoiceSvc.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, invoice)
}

type updateInvoiceRequest struct {
	Notes              *string `json:"notes"`
	TermsAndConditions *string `json:"termsAndConditions"`
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.Update(c.Request.Context(), currentUserID(c), id, invoicedomain.UpdateInvoiceRequest{
		Notes:              req.Notes,
		TermsAndConditions: req.TermsAndConditions,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, invoice)
}
