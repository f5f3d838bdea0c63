package rbac

import (
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Enforcer answers role/permission checks. Policies are built from
// user.RolePermissions and user.RoleParents.
type Enforcer struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

func New() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	for role, perms := range user.RolePermissions {
		for _, p := range perms {
			obj, act := split(p)
			if _, err := e.AddPolicy(string(role), obj, act); err != nil {
				return nil, fmt.Errorf("failed to add policy %s/%s: %w", role, p, err)
			}
		}
	}
	for role, parents := range user.RoleParents {
		for _, parent := range parents {
			if _, err := e.AddGroupingPolicy(string(role), string(parent)); err != nil {
				return nil, fmt.Errorf("failed to add role %s -> %s: %w", role, parent, err)
			}
		}
	}
	return &Enforcer{enforcer: e}, nil
}

// split turns "leave.approve" into ("leave", "approve").
func split(p user.Permission) (string, string) {
	obj, act, _ := strings.Cut(string(p), ".")
	return obj, act
}

// Can reports whether role holds permission, directly or through a parent role.
func (e *Enforcer) Can(role user.Role, permission user.Permission) bool {
	obj, act := split(permission)
	e.mu.RLock()
	defer e.mu.RUnlock()
	ok, err := e.enforcer.Enforce(string(role), obj, act)
	return err == nil && ok
}

// Permissions lists every permission role holds.
func (e *Enforcer) Permissions(role user.Role) []user.Permission {
	e.mu.RLock()
	defer e.mu.RUnlock()
	perms, err := e.enforcer.GetImplicitPermissionsForUser(string(role))
	if err != nil {
		return nil
	}
	out := make([]user.Permission, 0, len(perms))
	for _, p := range perms {
		out = append(out, user.Permission(p[1]+"."+p[2]))
	}
	return out
}
