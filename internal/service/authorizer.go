package service

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/audit"
	"docuvault/internal/auth"
	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/services"
	"docuvault/internal/tenant"
)

// accessAuthorizer is the access decision point: token validation, context
// binding, and ACL resolution composed into a single allow/deny answer with
// the correct visibility policy on denial.
type accessAuthorizer struct {
	validator   *auth.Validator
	resolver    *AclResolver
	roleAliases map[string]string
	auditor     *audit.Publisher
	logger      *slog.Logger
}

// NewAuthorizer creates the access decision point. roleAliases maps external
// role names onto the closed role set; it may be nil.
func NewAuthorizer(
	validator *auth.Validator,
	resolver *AclResolver,
	roleAliases map[string]string,
	auditor *audit.Publisher,
	logger *slog.Logger,
) services.Authorizer {
	return &accessAuthorizer{
		validator:   validator,
		resolver:    resolver,
		roleAliases: roleAliases,
		auditor:     auditor,
		logger:      logger,
	}
}

// Authorize checks the bound tenant context against a folder.
//
// Denial policy: a folder that does not exist, belongs to another tenant, or
// on which the caller holds no grant at all reads as ErrNotFound - one
// indistinguishable answer for total invisibility. A visible folder with an
// effective level below the requirement reads as ErrInsufficientAccess.
// Outer layers must carry the distinction through unchanged.
func (a *accessAuthorizer) Authorize(ctx context.Context, folderID int64, required models.AccessLevel) (*tenant.Context, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	level, err := a.EffectiveLevel(ctx, tc.UserID(), folderID)
	if err != nil {
		return nil, err
	}

	if level == models.AccessNone {
		a.logger.Debug("access denied: no visibility",
			"tenant_id", tc.TenantID(), "user_id", tc.UserID(), "folder_id", folderID)
		a.auditor.Emit(ctx, models.AuditAccessDenied, "no visibility", map[string]any{
			"folder_id": folderID,
			"required":  required.String(),
		})
		return nil, fmt.Errorf("folder %d: %w", folderID, domain.ErrNotFound)
	}
	if !level.Allows(required) {
		a.logger.Debug("access denied: insufficient level",
			"tenant_id", tc.TenantID(), "user_id", tc.UserID(), "folder_id", folderID,
			"effective", level.String(), "required", required.String())
		a.auditor.Emit(ctx, models.AuditAccessDenied, "insufficient level", map[string]any{
			"folder_id": folderID,
			"required":  required.String(),
			"effective": level.String(),
		})
		return nil, fmt.Errorf("folder %d requires %s: %w", folderID, required, domain.ErrInsufficientAccess)
	}

	return tc, nil
}

// AuthorizeToken validates the raw credential, binds a fresh tenant context,
// and authorizes against the folder. An invalid or incomplete token never
// binds a context, not even partially.
func (a *accessAuthorizer) AuthorizeToken(ctx context.Context, rawToken string, folderID int64, required models.AccessLevel) (context.Context, *tenant.Context, error) {
	claims, err := a.validator.Validate(rawToken)
	if err != nil {
		return nil, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, err
	}

	tc, err := tenant.New(claims.TenantID, userID, tenant.RolesFromNames(claims.Roles, a.roleAliases))
	if err != nil {
		return nil, nil, err
	}

	bound := tenant.NewContext(ctx, tc)
	if _, err := a.Authorize(bound, folderID, required); err != nil {
		return nil, nil, err
	}
	return bound, tc, nil
}

// EffectiveLevel resolves the user's level on a folder. Tenant
// administrators hold an implicit ADMIN on every folder of their tenant;
// everything else comes from explicit grants and inheritance.
func (a *accessAuthorizer) EffectiveLevel(ctx context.Context, userID, folderID int64) (models.AccessLevel, error) {
	level, err := a.resolver.EffectiveLevel(ctx, userID, folderID)
	if err != nil {
		return models.AccessNone, err
	}

	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return models.AccessNone, err
	}
	if tc.UserID() == userID && tc.Can(tenant.CapManageGrants) {
		level = level.Max(models.AccessAdmin)
	}

	return level, nil
}
