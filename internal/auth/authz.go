package auth

import (
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	userdomain "github.com/hubblehq/hubble/internal/user/domain"
	"gorm.io/gorm"
)

// RBAC over route groups: a policy grants (role, resource, action) where
// resource is the first path segment under /api/v1 and action the HTTP verb.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

func NewEnforcer(db *gorm.DB) (*casbin.Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}

	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func seedPolicies(e *casbin.Enforcer) error {
	policies := [][]string{
		{userdomain.RoleRegularUser, "accounts/*", "(GET)|(POST)|(PUT)"},
		{userdomain.RoleRegularUser, "plans/*", "(GET)|(POST)|(PUT)"},
		{userdomain.RoleRegularUser, "subscriptions/*", "(GET)|(POST)|(PUT)|(DELETE)"},
		{userdomain.RoleRegularUser, "invoices/*", "(GET)|(PUT)"},
		{userdomain.RoleRegularUser, "transactions/*", "(GET)|(POST)"},
		{userdomain.RoleAdministrator, "*", "(GET)|(POST)|(PUT)|(PATCH)|(DELETE)"},
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	return nil
}
