package service

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/cache"
	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/tenant"
)

// AclResolver computes the effective access level a user holds on a folder
// from explicit grants and recursive inheritance.
type AclResolver struct {
	folderRepo repositories.FolderRepository
	grantRepo  repositories.GrantRepository
	decisions  *cache.ACLCache
	logger     *slog.Logger
}

// NewAclResolver creates a resolver. The decision cache may be nil.
func NewAclResolver(
	folderRepo repositories.FolderRepository,
	grantRepo repositories.GrantRepository,
	decisions *cache.ACLCache,
	logger *slog.Logger,
) *AclResolver {
	return &AclResolver{
		folderRepo: folderRepo,
		grantRepo:  grantRepo,
		decisions:  decisions,
		logger:     logger,
	}
}

// EffectiveLevel resolves the user's level on a folder within the bound
// tenant. ErrNotFound when the folder is not visible in the tenant;
// AccessNone (no error) when it is visible but the user holds no applicable
// grant.
func (r *AclResolver) EffectiveLevel(ctx context.Context, userID, folderID int64) (models.AccessLevel, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return models.AccessNone, err
	}

	if level, ok := r.decisions.Get(ctx, tc.TenantID(), userID, folderID); ok {
		return level, nil
	}

	chain, err := r.folderRepo.AncestorChain(ctx, folderID)
	if err != nil {
		return models.AccessNone, err
	}

	grants, err := r.grantRepo.ListActiveForUser(ctx, userID)
	if err != nil {
		return models.AccessNone, fmt.Errorf("load grants: %w", err)
	}

	level, err := resolveEffective(chain, grantsByFolder(grants))
	if err != nil {
		return models.AccessNone, err
	}

	r.decisions.Set(ctx, tc.TenantID(), userID, folderID, level)
	return level, nil
}

// grantsByFolder keys active grants by folder id. The repository's partial
// unique index guarantees at most one active grant per (folder, user) pair,
// so a plain map loses nothing.
func grantsByFolder(grants []models.FolderGrant) map[int64]models.FolderGrant {
	byFolder := make(map[int64]models.FolderGrant, len(grants))
	for _, g := range grants {
		byFolder[g.FolderID] = g
	}
	return byFolder
}

// resolveEffective is the pure resolution function: a walk over the ancestor
// chain (target first) against the user's grant set.
//
// The grant on the target folder applies regardless of its recursive flag;
// a grant on an ancestor applies only when recursive. The result is the
// maximum applicable level - additive, never restrictive - so a closer weak
// grant cannot shadow a stronger recursive ancestor grant, and the outcome
// cannot depend on evaluation order. A repeated folder id in the chain means
// the parent chain loops.
func resolveEffective(chain []models.Folder, grants map[int64]models.FolderGrant) (models.AccessLevel, error) {
	level := models.AccessNone
	seen := make(map[int64]bool, len(chain))
	for i, folder := range chain {
		if seen[folder.ID] {
			return models.AccessNone, fmt.Errorf("folder %d: %w", chain[0].ID, domain.ErrCorruptHierarchy)
		}
		seen[folder.ID] = true

		grant, ok := grants[folder.ID]
		if !ok {
			continue
		}
		if i == 0 || grant.Recursive {
			level = level.Max(grant.Level)
		}
	}
	return level, nil
}
