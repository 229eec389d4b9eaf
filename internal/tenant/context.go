// Package tenant carries the authenticated tenant/user/role bundle through a
// request's full lifetime. The binding rides on context.Context: ambient data
// attached to every continuation, so it survives hand-offs between goroutines
// and scheduler hops. There is no process-wide mutable slot and no opt-out
// default; code that runs without a binding gets an explicit error.
package tenant

import (
	"context"
	"fmt"
	"sort"

	"docuvault/internal/domain"
)

// Role is the closed set of role tags a credential can carry. Role names from
// the token are resolved into this set exactly once, at context-binding time.
type Role uint8

const (
	RoleViewer Role = iota + 1
	RoleEditor
	RoleAdmin
	RoleAuditor
)

var roleNames = map[Role]string{
	RoleViewer:  "VIEWER",
	RoleEditor:  "EDITOR",
	RoleAdmin:   "ADMIN",
	RoleAuditor: "AUDITOR",
}

// String returns the canonical uppercase role name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole resolves a canonical uppercase role name. Unknown names are not
// an error at this layer; callers drop them (and may log).
func ParseRole(name string) (Role, bool) {
	switch name {
	case "VIEWER":
		return RoleViewer, true
	case "EDITOR":
		return RoleEditor, true
	case "ADMIN":
		return RoleAdmin, true
	case "AUDITOR":
		return RoleAuditor, true
	}
	return 0, false
}

// Capability is a typed permission bit derived from roles at bind time,
// replacing string comparisons in business logic.
type Capability uint8

const (
	CapReadDocuments Capability = 1 << iota
	CapWriteDocuments
	CapManageGrants
	CapViewAudit
)

func capabilitiesFor(roles []Role) Capability {
	var caps Capability
	for _, r := range roles {
		switch r {
		case RoleViewer:
			caps |= CapReadDocuments
		case RoleEditor:
			caps |= CapReadDocuments | CapWriteDocuments
		case RoleAdmin:
			caps |= CapReadDocuments | CapWriteDocuments | CapManageGrants
		case RoleAuditor:
			caps |= CapReadDocuments | CapViewAudit
		}
	}
	return caps
}

// Context is the immutable per-request identity bundle: tenant id, user id,
// and the capability set resolved from roles. Created once per request after
// token validation, never mutated, safe for concurrent reads.
type Context struct {
	tenantID int64
	userID   int64 // 0 = absent (system/synthetic contexts)
	caps     Capability
	roles    []Role
}

// New builds a Context for an authenticated user. The tenant id must be a
// positive integer; the caller has already validated the credential.
func New(tenantID, userID int64, roles []Role) (*Context, error) {
	if tenantID <= 0 {
		return nil, fmt.Errorf("tenant id %d: %w", tenantID, domain.ErrMissingClaim)
	}
	sorted := make([]Role, len(roles))
	copy(sorted, roles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &Context{
		tenantID: tenantID,
		userID:   userID,
		caps:     capabilitiesFor(sorted),
		roles:    sorted,
	}, nil
}

// NewSystemContext builds a synthetic context for internal scheduled work
// that operates on one tenant without an acting user. Jobs must construct
// this explicitly; nothing ever binds it implicitly.
func NewSystemContext(tenantID int64) (*Context, error) {
	if tenantID <= 0 {
		return nil, fmt.Errorf("tenant id %d: %w", tenantID, domain.ErrMissingClaim)
	}
	return &Context{
		tenantID: tenantID,
		caps:     CapReadDocuments | CapWriteDocuments | CapManageGrants | CapViewAudit,
	}, nil
}

// TenantID returns the owning tenant of this request.
func (c *Context) TenantID() int64 { return c.tenantID }

// UserID returns the acting user id, or 0 when absent.
func (c *Context) UserID() int64 { return c.userID }

// HasUser reports whether an acting user is present.
func (c *Context) HasUser() bool { return c.userID != 0 }

// Can reports whether the context holds the given capability.
func (c *Context) Can(cap Capability) bool { return c.caps&cap == cap }

// Roles returns the resolved role set, sorted, for logging and responses.
func (c *Context) Roles() []string {
	names := make([]string, len(c.roles))
	for i, r := range c.roles {
		names[i] = r.String()
	}
	return names
}

// RolesFromNames resolves normalized role names into the closed role set,
// applying optional alias mappings (external IdPs emit their own names).
// Unknown names are dropped.
func RolesFromNames(names []string, aliases map[string]string) []Role {
	var roles []Role
	seen := make(map[Role]bool)
	for _, name := range names {
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		role, ok := ParseRole(name)
		if !ok || seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	return roles
}

type contextKey struct{}

// NewContext binds tc to a derived context. The binding lives for exactly the
// lifetime of the derived context and every continuation that inherits it.
func NewContext(parent context.Context, tc *Context) context.Context {
	return context.WithValue(parent, contextKey{}, tc)
}

// FromContext retrieves the bound tenant context. It fails with
// ErrTenantContextMissing when nothing was bound - never a silent default.
func FromContext(ctx context.Context) (*Context, error) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || tc == nil {
		return nil, domain.ErrTenantContextMissing
	}
	return tc, nil
}

// Bind runs fn with tc bound. The binding is visible to everything invoked
// transitively inside fn and released on every exit path, panics included,
// because it exists only on the derived context passed to fn.
func Bind(ctx context.Context, tc *Context, fn func(context.Context) error) error {
	return fn(NewContext(ctx, tc))
}
