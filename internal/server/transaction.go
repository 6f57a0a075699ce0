package server

import (
	"github.com/gin-gonic/gin"
	transactiondomain "github.com/hubblehq/hubble/internal/transaction/domain"
	"gorm.io/datatypes"
)

type createTransactionRequest struct {
	Amount        int64          `json:"amount" binding:"required,min=1"`
	Tax           int64          `json:"tax" binding:"min=0"`
	Comments      string         `json:"comments"`
	Action        string         `json:"action" binding:"required,oneof=purchase refund verify"`
	ReferenceID   string         `json:"referenceId" binding:"required,snowflakeid"`
	PaymentMethod string         `json:"paymentMethod" binding:"required,oneof=cash credit_card debit_card online"`
	Metadata      datatypes.JSON `json:"metadata"`
}

func (s *Server) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	txn, err := s.transactionSvc.Create(c.Request.Context(), currentUserID(c), transactiondomain.CreateTransactionRequest{
		Amount:        req.Amount,
		Tax:           req.Tax,
		Comments:      req.Comments,
		Action:        transactiondomain.TransactionAction(req.Action),
		ReferenceID:   req.ReferenceID,
		PaymentMethod: transactiondomain.PaymentMethod(req.PaymentMethod),
		Metadata:      req.Metadata,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondCreated(c, txn)
}

type listTransactionQuery struct {
	Page          int    `form:"page" binding:"omitempty,min=0"`
	Limit         int    `form:"limit"`
	Action        string `form:"action" binding:"omitempty,oneof=purchase refund verify"`
	PaymentMethod string `form:"paymentMethod" binding:"omitempty,oneof=cash credit_card debit_card online"`
	ReferenceID   string `form:"referenceId"`
}

func (s *Server) ListTransactions(c *gin.Context) {
	var q listTransactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.transactionSvc.List(c.Request.Context(), currentUserID(c), transactiondomain.ListTransactionRequest{
		Page:          q.Page,
		Limit:         q.Limit,
		Action:        q.Action,
		PaymentMethod: q.PaymentMethod,
		ReferenceID:   q.ReferenceID,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondList(c, page)
}

func (s *Server) GetTransaction(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	txn, err := s.transactionSvc.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, txn)
}
