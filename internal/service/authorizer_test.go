package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"docuvault/internal/auth"
	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/services"
	"docuvault/internal/tenant"

	"github.com/golang-jwt/jwt/v5"
)

func newTestAuthorizer(t *testing.T, validator *auth.Validator, folderRepo *memFolderRepo, grantRepo *memGrantRepo) services.Authorizer {
	t.Helper()
	resolver := NewAclResolver(folderRepo, grantRepo, nil, discardLogger())
	return NewAuthorizer(validator, resolver, nil, nil, discardLogger())
}

func TestAuthorizeGrantsSufficientLevel(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo(models.FolderGrant{
		ID: 1, TenantID: 1, FolderID: 3, UserID: 7,
		Level: models.AccessWrite, Active: true,
	})
	authorizer := newTestAuthorizer(t, nil, folderRepo, grantRepo)

	ctx := bindTestContext(t, 1, 7, tenant.RoleEditor)
	tc, err := authorizer.Authorize(ctx, 3, models.AccessWrite)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if tc.TenantID() != 1 || tc.UserID() != 7 {
		t.Errorf("Authorize() bound tenant/user = %d/%d, want 1/7", tc.TenantID(), tc.UserID())
	}
}

func TestAuthorizeInsufficientLevel(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo(models.FolderGrant{
		ID: 1, TenantID: 1, FolderID: 3, UserID: 7,
		Level: models.AccessRead, Active: true,
	})
	authorizer := newTestAuthorizer(t, nil, folderRepo, grantRepo)

	ctx := bindTestContext(t, 1, 7, tenant.RoleViewer)
	_, err := authorizer.Authorize(ctx, 3, models.AccessWrite)
	if !errors.Is(err, domain.ErrInsufficientAccess) {
		t.Errorf("Authorize() error = %v, want ErrInsufficientAccess", err)
	}
}

// Total invisibility must read identically for a nonexistent folder, a
// foreign tenant's folder, and a visible-in-tenant folder the user holds no
// grant on: always ErrNotFound, never ErrInsufficientAccess.
func TestAuthorizeInvisibilityIsUniform(t *testing.T) {
	folderRepo := newMemFolderRepo(
		models.Folder{ID: 3, TenantID: 1, Name: "ours"},
		models.Folder{ID: 9, TenantID: 2, Name: "theirs"},
	)
	authorizer := newTestAuthorizer(t, nil, folderRepo, newMemGrantRepo())
	ctx := bindTestContext(t, 1, 7, tenant.RoleViewer)

	tests := []struct {
		name     string
		folderID int64
	}{
		{"nonexistent folder", 404},
		{"foreign tenant folder", 9},
		{"no grant at all", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authorizer.Authorize(ctx, tt.folderID, models.AccessRead)
			if !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("Authorize() error = %v, want ErrNotFound", err)
			}
			if errors.Is(err, domain.ErrInsufficientAccess) {
				t.Error("invisibility leaked as an access error")
			}
		})
	}
}

func TestAuthorizeRequiresTenantContext(t *testing.T) {
	authorizer := newTestAuthorizer(t, nil, newMemFolderRepo(), newMemGrantRepo())
	_, err := authorizer.Authorize(context.Background(), 1, models.AccessRead)
	if !errors.Is(err, domain.ErrTenantContextMissing) {
		t.Errorf("Authorize() error = %v, want ErrTenantContextMissing", err)
	}
}

func TestTenantAdminHoldsImplicitAdmin(t *testing.T) {
	folderRepo := newMemFolderRepo(chainFixture()...)
	authorizer := newTestAuthorizer(t, nil, folderRepo, newMemGrantRepo())

	// No explicit grant anywhere, but the ADMIN role carries grant
	// management for the whole tenant.
	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)
	if _, err := authorizer.Authorize(ctx, 3, models.AccessAdmin); err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}

	level, err := authorizer.EffectiveLevel(ctx, 7, 3)
	if err != nil {
		t.Fatalf("EffectiveLevel() error = %v", err)
	}
	if level != models.AccessAdmin {
		t.Errorf("EffectiveLevel() = %s, want ADMIN", level)
	}
}

// The implicit admin level never pierces tenant isolation: a foreign folder
// stays invisible to an administrator too.
func TestTenantAdminCannotSeeForeignFolders(t *testing.T) {
	folderRepo := newMemFolderRepo(models.Folder{ID: 9, TenantID: 2, Name: "theirs"})
	authorizer := newTestAuthorizer(t, nil, folderRepo, newMemGrantRepo())

	ctx := bindTestContext(t, 1, 7, tenant.RoleAdmin)
	_, err := authorizer.Authorize(ctx, 9, models.AccessRead)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Authorize() error = %v, want ErrNotFound", err)
	}
}

func signTestToken(t *testing.T, secret string, tenantID int64, subject string, roles []string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantID: tenantID,
		Roles:    roles,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestAuthorizeTokenBindsContext(t *testing.T) {
	const secret = "authorizer-test-secret"
	validator, err := auth.NewValidator(auth.Options{Secret: secret}, discardLogger())
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}

	folderRepo := newMemFolderRepo(chainFixture()...)
	grantRepo := newMemGrantRepo(models.FolderGrant{
		ID: 1, TenantID: 1, FolderID: 3, UserID: 7,
		Level: models.AccessRead, Active: true,
	})
	authorizer := newTestAuthorizer(t, validator, folderRepo, grantRepo)

	raw := signTestToken(t, secret, 1, "7", []string{"VIEWER"})
	bound, tc, err := authorizer.AuthorizeToken(context.Background(), raw, 3, models.AccessRead)
	if err != nil {
		t.Fatalf("AuthorizeToken() error = %v", err)
	}
	if tc.TenantID() != 1 || tc.UserID() != 7 {
		t.Errorf("bound tenant/user = %d/%d, want 1/7", tc.TenantID(), tc.UserID())
	}

	got, err := tenant.FromContext(bound)
	if err != nil {
		t.Fatalf("FromContext() on returned context error = %v", err)
	}
	if got != tc {
		t.Error("returned context does not carry the returned tenant context")
	}
}

func TestAuthorizeTokenRejectsInvalidCredential(t *testing.T) {
	validator, err := auth.NewValidator(auth.Options{Secret: "right"}, discardLogger())
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	authorizer := newTestAuthorizer(t, validator, newMemFolderRepo(), newMemGrantRepo())

	raw := signTestToken(t, "wrong", 1, "7", []string{"VIEWER"})
	bound, tc, err := authorizer.AuthorizeToken(context.Background(), raw, 3, models.AccessRead)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("AuthorizeToken() error = %v, want ErrInvalidToken", err)
	}
	if bound != nil || tc != nil {
		t.Error("a rejected token must not bind a context")
	}
}
