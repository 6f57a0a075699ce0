package server

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/hubblehq/hubble/internal/account/domain"
	"github.com/hubblehq/hubble/internal/auth"
	"github.com/hubblehq/hubble/internal/config"
	invoicedomain "github.com/hubblehq/hubble/internal/invoice/domain"
	plandomain "github.com/hubblehq/hubble/internal/plan/domain"
	subscriptiondomain "github.com/hubblehq/hubble/internal/subscription/domain"
	transactiondomain "github.com/hubblehq/hubble/internal/transaction/domain"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Start),
)

type Server struct {
	log *zap.Logger
	cfg config.Config

	issuer   *auth.TokenIssuer
	enforcer *casbin.Enforcer
	registry *prometheus.Registry

	userSvc         userdomain.Service
	accountSvc      accountdomain.Service
	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
	invoiceSvc      invoicedomain.Service
	transactionSvc  transactiondomain.Service
}

type ServerParam struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config

	Issuer   *auth.TokenIssuer
	Enforcer *casbin.Enforcer
	Registry *prometheus.Registry

	UserSvc         userdomain.Service
	AccountSvc      accountdomain.Service
	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
	InvoiceSvc      invoicedomain.Service
	TransactionSvc  transactiondomain.Service
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log: p.Log.Named("server"),
		cfg: p.Cfg,

		issuer:   p.Issuer,
		enforcer: p.Enforcer,
		registry: p.Registry,

		userSvc:         p.UserSvc,
		accountSvc:      p.AccountSvc,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
		invoiceSvc:      p.InvoiceSvc,
		transactionSvc:  p.TransactionSvc,
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")

	// Signup and login are the only open endpoints.
	api.POST("/users", s.SignUp)
	api.POST("/sessions", s.CreateSession)

	authed := api.Group("")
	authed.Use(s.authenticate(), s.authorize())

	authed.POST("/accounts", s.CreateAccount)
	authed.GET("/accounts", s.ListAccounts)
	authed.GET("/accounts/:id", s.GetAccount)
	authed.PUT("/accounts/:id", s.UpdateAccount)

	authed.POST("/plans", s.CreatePlan)
	authed.GET("/plans", s.ListPlans)
	authed.GET("/plans/:id", s.GetPlan)
	authed.PUT("/plans/:id", s.UpdatePlan)

	authed.POST("/subscriptions", s.CreateSubscription)
	authed.GET("/subscriptions", s.ListSubscriptions)
	authed.GET("/subscriptions/:id", s.GetSubscription)
	authed.POST("/subscriptions/:id/cancel", s.CancelSubscription)
	authed.POST("/subscriptions/:id/pause", s.PauseSubscription)
	authed.POST("/subscriptions/:id/resume", s.ResumeSubscription)

	authed.GET("/invoices", s.ListInvoices)
	authed.GET("/invoices/:id", s.GetInvoice)
	authed.PUT("/invoices/:id", s.UpdateInvoice)

	authed.POST("/transactions", s.CreateTransaction)
	authed.GET("/transactions", s.ListTransactions)
	authed.GET("/transactions/:id", s.GetTransaction)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

func Start(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("http server starting", zap.String("addr", s.cfg.Server.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
