package server

import (
	"github.com/gin-gonic/gin"
	accountdomain "github.com/hubblehq/hubble/internal/account/domain"
)

type upsertAccountRequest struct {
	UserName     string `json:"userName" binding:"required,min=3,max=64"`
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	PhoneNumber  string `json:"phoneNumber" binding:"omitempty,e164"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country" binding:"omitempty,iso3166_1_alpha2"`
	ZipCode      string `json:"zipCode"`
}

func (r upsertAccountRequest) toDomain() accountdomain.UpsertAccountRequest {
	return accountdomain.UpsertAccountRequest{
		UserName:     r.UserName,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		EmailAddress: r.EmailAddress,
		PhoneNumber:  r.PhoneNumber,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		ZipCode:      r.ZipCode,
	}
}

func (s *Server) CreateAccount(c *gin.Context) {
	var req upsertAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.accountSvc.Create(c.Request.Context(), currentUserID(c), req.toDomain())
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondCreated(c, account)
}

type listAccountQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=0"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

func (s *Server) ListAccounts(c *gin.Context) {
	var q listAccountQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.accountSvc.List(c.Request.Context(), currentUserID(c), accountdomain.ListAccountRequest{
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

func (s *Server) GetAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	account, err := s.accountSvc.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, account)
}

func (s *Server) UpdateAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	var req upsertAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.accountSvc.Update(c.Request.Context(), currentUserID(c), id, req.toDomain())
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, account)
}
