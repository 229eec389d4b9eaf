package service

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/audit"
	"docuvault/internal/cache"
	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type grantService struct {
	grantRepo  repositories.GrantRepository
	authorizer services.Authorizer
	decisions  *cache.ACLCache
	auditor    *audit.Publisher
	logger     *slog.Logger
}

// NewGrantService creates a new grant service. Every operation requires
// ADMIN on the target folder.
func NewGrantService(
	grantRepo repositories.GrantRepository,
	authorizer services.Authorizer,
	decisions *cache.ACLCache,
	auditor *audit.Publisher,
	logger *slog.Logger,
) services.GrantService {
	return &grantService{
		grantRepo:  grantRepo,
		authorizer: authorizer,
		decisions:  decisions,
		auditor:    auditor,
		logger:     logger,
	}
}

// Create inserts an active grant. A duplicate active (folder, user) pair is
// rejected with ErrDuplicateGrant before the resolver can ever observe two
// conflicting entries; the rejection is reported back, not a crash, so the
// call site can revoke or reactivate instead.
func (s *grantService) Create(ctx context.Context, req *services.CreateGrantRequest) (*models.FolderGrant, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Level, validation.By(validAccessLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	tc, err := s.authorizer.Authorize(ctx, req.FolderID, models.AccessAdmin)
	if err != nil {
		return nil, err
	}

	grant := &models.FolderGrant{
		FolderID:  req.FolderID,
		UserID:    req.UserID,
		Level:     req.Level,
		Recursive: req.Recursive,
	}
	if err := s.grantRepo.Create(ctx, grant); err != nil {
		return nil, err
	}

	s.decisions.InvalidateTenant(ctx, tc.TenantID())
	s.logger.Info("grant created",
		"grant_id", grant.ID,
		"tenant_id", grant.TenantID,
		"folder_id", grant.FolderID,
		"user_id", grant.UserID,
		"level", grant.Level.String(),
		"recursive", grant.Recursive,
	)
	s.auditor.Emit(ctx, models.AuditGrantCreated, grant.Level.String(), map[string]any{
		"grant_id":  grant.ID,
		"folder_id": grant.FolderID,
		"user_id":   grant.UserID,
	})

	return grant, nil
}

// ListByFolder returns a folder's grant history; requires ADMIN.
func (s *grantService) ListByFolder(ctx context.Context, folderID int64) ([]models.FolderGrant, error) {
	if _, err := s.authorizer.Authorize(ctx, folderID, models.AccessAdmin); err != nil {
		return nil, err
	}
	return s.grantRepo.ListByFolder(ctx, folderID)
}

// Revoke deactivates a grant; requires ADMIN on the grant's folder.
func (s *grantService) Revoke(ctx context.Context, grantID int64) (*models.FolderGrant, error) {
	grant, err := s.grantRepo.GetByID(ctx, grantID)
	if err != nil {
		return nil, err
	}
	tc, err := s.authorizer.Authorize(ctx, grant.FolderID, models.AccessAdmin)
	if err != nil {
		return nil, err
	}

	revoked, err := s.grantRepo.Revoke(ctx, grantID)
	if err != nil {
		return nil, err
	}

	s.decisions.InvalidateTenant(ctx, tc.TenantID())
	s.auditor.Emit(ctx, models.AuditGrantRevoked, revoked.Level.String(), map[string]any{
		"grant_id":  revoked.ID,
		"folder_id": revoked.FolderID,
		"user_id":   revoked.UserID,
	})
	return revoked, nil
}

// Reactivate re-enables a revoked grant; requires ADMIN on the grant's
// folder. This is the only legitimate path back to active - a fresh create
// against the pair is always a duplicate.
func (s *grantService) Reactivate(ctx context.Context, grantID int64) (*models.FolderGrant, error) {
	grant, err := s.grantRepo.GetByID(ctx, grantID)
	if err != nil {
		return nil, err
	}
	tc, err := s.authorizer.Authorize(ctx, grant.FolderID, models.AccessAdmin)
	if err != nil {
		return nil, err
	}

	reactivated, err := s.grantRepo.Reactivate(ctx, grantID)
	if err != nil {
		return nil, err
	}

	s.decisions.InvalidateTenant(ctx, tc.TenantID())
	s.auditor.Emit(ctx, models.AuditGrantReactivated, reactivated.Level.String(), map[string]any{
		"grant_id":  reactivated.ID,
		"folder_id": reactivated.FolderID,
		"user_id":   reactivated.UserID,
	})
	return reactivated, nil
}

func validAccessLevel(value interface{}) error {
	level, ok := value.(models.AccessLevel)
	if !ok || level < models.AccessRead || level > models.AccessAdmin {
		return fmt.Errorf("must be READ, WRITE, or ADMIN")
	}
	return nil
}
