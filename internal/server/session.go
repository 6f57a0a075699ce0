package server

import (
	"github.com/gin-gonic/gin"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
)

type signUpRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
}

func (s *Server) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.userSvc.SignUp(c.Request.Context(), userdomain.SignUpRequest{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondCreated(c, user)
}

type createSessionRequest struct {
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string          `json:"token"`
	User  userdomain.User `json:"user"`
}

func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.userSvc.Authenticate(c.Request.Context(), req.EmailAddress, req.Password)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondCreated(c, sessionResponse{Token: token, User: user})
}
