package service

import (
	"errors"
	"testing"

	"docuvault/internal/audit"
	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/services"
	"docuvault/internal/tenant"
)

func newTestGrantService(t *testing.T, folderRepo *memFolderRepo, grantRepo *memGrantRepo) services.GrantService {
	t.Helper()
	auditor, err := audit.NewPublisher("", "audit.events", discardLogger())
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	authorizer := newTestAuthorizer(t, nil, folderRepo, grantRepo)
	return NewGrantService(grantRepo, authorizer, nil, auditor, discardLogger())
}

func TestGrantCreate(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo()
	svc := newTestGrantService(t, folderRepo, grantRepo)

	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)
	grant, err := svc.Create(ctx, &services.CreateGrantRequest{
		FolderID:  3,
		UserID:    8,
		Level:     models.AccessRead,
		Recursive: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if grant.ID == 0 || grant.TenantID != 1 || !grant.Active {
		t.Errorf("Create() grant = %+v, want active grant stamped with tenant 1", grant)
	}
}

func TestGrantCreateRejectsDuplicate(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo()
	svc := newTestGrantService(t, folderRepo, grantRepo)
	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)

	first, err := svc.Create(ctx, &services.CreateGrantRequest{
		FolderID: 3, UserID: 8, Level: models.AccessRead,
	})
	if err != nil {
		t.Fatalf("Create() first grant error = %v", err)
	}

	// Same pair at a different level is still a duplicate; the existing
	// grant's id comes back so the caller can revoke or reactivate instead.
	_, err = svc.Create(ctx, &services.CreateGrantRequest{
		FolderID: 3, UserID: 8, Level: models.AccessAdmin,
	})
	if !errors.Is(err, domain.ErrDuplicateGrant) {
		t.Fatalf("Create() duplicate error = %v, want ErrDuplicateGrant", err)
	}
	var dup *domain.DuplicateGrantError
	if !errors.As(err, &dup) {
		t.Fatalf("Create() duplicate error = %T, want *DuplicateGrantError", err)
	}
	if dup.ExistingGrantID != first.ID {
		t.Errorf("ExistingGrantID = %d, want %d", dup.ExistingGrantID, first.ID)
	}
}

func TestGrantCreateValidation(t *testing.T) {
	svc := newTestGrantService(t, newMemFolderRepo(), newMemGrantRepo())
	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)

	tests := []struct {
		name string
		req  services.CreateGrantRequest
	}{
		{"missing user", services.CreateGrantRequest{FolderID: 3, Level: models.AccessRead}},
		{"missing folder", services.CreateGrantRequest{UserID: 8, Level: models.AccessRead}},
		{"level none", services.CreateGrantRequest{FolderID: 3, UserID: 8, Level: models.AccessNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Create(ctx, &req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestGrantCreateRequiresAdminOnFolder(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo(models.FolderGrant{
		ID: 1, TenantID: 1, FolderID: 3, UserID: 7,
		Level: models.AccessWrite, Active: true,
	})
	svc := newTestGrantService(t, folderRepo, grantRepo)

	// An editor with WRITE on the folder can see it but cannot administer
	// its grants.
	ctx := bindTestContext(t, 1, 7, tenant.RoleEditor)
	_, err := svc.Create(ctx, &services.CreateGrantRequest{
		FolderID: 3, UserID: 8, Level: models.AccessRead,
	})
	if !errors.Is(err, domain.ErrInsufficientAccess) {
		t.Errorf("Create() error = %v, want ErrInsufficientAccess", err)
	}
}

func TestGrantRevokeAndReactivate(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo()
	svc := newTestGrantService(t, folderRepo, grantRepo)
	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)

	grant, err := svc.Create(ctx, &services.CreateGrantRequest{
		FolderID: 3, UserID: 8, Level: models.AccessWrite,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	revoked, err := svc.Revoke(ctx, grant.ID)
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked.Active || revoked.RevokedAt == nil {
		t.Errorf("Revoke() grant = %+v, want inactive with revocation time", revoked)
	}

	reactivated, err := svc.Reactivate(ctx, grant.ID)
	if err != nil {
		t.Fatalf("Reactivate() error = %v", err)
	}
	if !reactivated.Active || reactivated.RevokedAt != nil {
		t.Errorf("Reactivate() grant = %+v, want active again", reactivated)
	}
}

func TestGrantReactivateRejectsConflictingActive(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo()
	svc := newTestGrantService(t, folderRepo, grantRepo)
	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)

	first, err := svc.Create(ctx, &services.CreateGrantRequest{
		FolderID: 3, UserID: 8, Level: models.AccessRead,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Revoke(ctx, first.ID); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	// A fresh grant now covers the pair; the revoked one cannot come back.
	if _, err := svc.Create(ctx, &services.CreateGrantRequest{
		FolderID: 3, UserID: 8, Level: models.AccessWrite,
	}); err != nil {
		t.Fatalf("Create() replacement error = %v", err)
	}
	if _, err := svc.Reactivate(ctx, first.ID); !errors.Is(err, domain.ErrDuplicateGrant) {
		t.Errorf("Reactivate() error = %v, want ErrDuplicateGrant", err)
	}
}

func TestGrantRevokeUnknown(t *testing.T) {
	svc := newTestGrantService(t, newMemFolderRepo(), newMemGrantRepo())
	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)
	if _, err := svc.Revoke(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Revoke() error = %v, want ErrNotFound", err)
	}
}
