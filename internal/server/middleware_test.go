package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hubblehq/hubble/internal/auth"
	"github.com/hubblehq/hubble/internal/clock"
	"github.com/hubblehq/hubble/internal/config"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := auth.NewEnforcer(db)
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer(config.Config{Auth: config.AuthConfig{
		Secret:        "test-secret",
		Issuer:        "hubble",
		Audience:      "hubble",
		TokenLifetime: time.Hour,
	}}, clock.Fixed(time.Now()))
	require.NoError(t, err)

	s := &Server{
		log:      zap.NewNop(),
		issuer:   issuer,
		enforcer: enforcer,
	}

	r := gin.New()
	authed := r.Group("/api/v1")
	authed.Use(s.authenticate(), s.authorize())
	authed.GET("/accounts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": currentUserID(c).String()})
	})
	authed.GET("/admin-reports", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, issuer
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/accounts", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsForgedToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/accounts", "forged.token.value")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorizePermitsRegularUserOnOwnedResources(t *testing.T) {
	r, issuer := newAuthTestRouter(t)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, err := issuer.Issue(node.Generate(), userdomain.RoleRegularUser)
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/v1/accounts", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorizeDeniesRegularUserOutsidePolicy(t *testing.T) {
	r, issuer := newAuthTestRouter(t)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, err := issuer.Issue(node.Generate(), userdomain.RoleRegularUser)
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/v1/admin-reports", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthorizePermitsAdministratorEverywhere(t *testing.T) {
	r, issuer := newAuthTestRouter(t)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	token, err := issuer.Issue(node.Generate(), userdomain.RoleAdministrator)
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/v1/admin-reports", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
