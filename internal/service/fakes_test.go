package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/tenant"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v int64) *int64 { return &v }

// bindTestContext builds a bound tenant context for tests.
func bindTestContext(t *testing.T, tenantID, userID int64, roles ...tenant.Role) context.Context {
	t.Helper()
	tc, err := tenant.New(tenantID, userID, roles)
	if err != nil {
		t.Fatalf("tenant.New() error = %v", err)
	}
	return tenant.NewContext(context.Background(), tc)
}

// memFolderRepo is an in-memory FolderRepository honoring the same
// tenant-scoping contract as the postgres implementation.
type memFolderRepo struct {
	folders map[int64]models.Folder
	nextID  int64
}

func newMemFolderRepo(folders ...models.Folder) *memFolderRepo {
	r := &memFolderRepo{folders: make(map[int64]models.Folder)}
	for _, f := range folders {
		r.folders[f.ID] = f
		if f.ID > r.nextID {
			r.nextID = f.ID
		}
	}
	return r
}

func (r *memFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return err
	}
	r.nextID++
	folder.ID = r.nextID
	folder.TenantID = tc.TenantID()
	folder.CreatedAt = time.Now().UTC()
	folder.UpdatedAt = folder.CreatedAt
	r.folders[folder.ID] = *folder
	return nil
}

func (r *memFolderRepo) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, ok := r.folders[id]
	if !ok || f.TenantID != tc.TenantID() || f.DeletedAt != nil {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (r *memFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	if _, err := r.GetByID(ctx, folder.ID); err != nil {
		return err
	}
	folder.UpdatedAt = time.Now().UTC()
	r.folders[folder.ID] = *folder
	return nil
}

func (r *memFolderRepo) SoftDelete(ctx context.Context, id int64) (*models.Folder, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f.DeletedAt = &now
	r.folders[id] = *f
	return f, nil
}

func (r *memFolderRepo) ListChildren(ctx context.Context, parentID *int64) ([]models.Folder, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Folder
	for _, f := range r.folders {
		if f.TenantID != tc.TenantID() || f.DeletedAt != nil {
			continue
		}
		switch {
		case parentID == nil && f.ParentID == nil:
			out = append(out, f)
		case parentID != nil && f.ParentID != nil && *f.ParentID == *parentID:
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFolderRepo) ListAll(ctx context.Context) ([]models.Folder, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Folder
	for _, f := range r.folders {
		if f.TenantID == tc.TenantID() && f.DeletedAt == nil {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFolderRepo) AncestorChain(ctx context.Context, id int64) ([]models.Folder, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var chain []models.Folder
	cur := id
	for depth := 0; ; depth++ {
		if depth > 128 {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrCorruptHierarchy)
		}
		f, ok := r.folders[cur]
		if !ok || f.TenantID != tc.TenantID() || f.DeletedAt != nil {
			if depth == 0 {
				return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
			}
			break
		}
		chain = append(chain, f)
		if f.ParentID == nil {
			break
		}
		cur = *f.ParentID
	}
	return chain, nil
}

// memTxManager runs the function directly; in-memory fakes have no
// transactions to coordinate.
type memTxManager struct{}

func (memTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// memDocumentRepo is an in-memory DocumentRepository.
type memDocumentRepo struct {
	docs   map[int64]models.Document
	nextID int64
}

func newMemDocumentRepo(docs ...models.Document) *memDocumentRepo {
	r := &memDocumentRepo{docs: make(map[int64]models.Document)}
	for _, d := range docs {
		r.docs[d.ID] = d
		if d.ID > r.nextID {
			r.nextID = d.ID
		}
	}
	return r
}

func (r *memDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return err
	}
	r.nextID++
	doc.ID = r.nextID
	doc.TenantID = tc.TenantID()
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	r.docs[doc.ID] = *doc
	return nil
}

func (r *memDocumentRepo) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := r.docs[id]
	if !ok || d.TenantID != tc.TenantID() || d.DeletedAt != nil {
		return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	return &d, nil
}

func (r *memDocumentRepo) Update(ctx context.Context, doc *models.Document) error {
	if _, err := r.GetByID(ctx, doc.ID); err != nil {
		return err
	}
	doc.UpdatedAt = time.Now().UTC()
	r.docs[doc.ID] = *doc
	return nil
}

func (r *memDocumentRepo) SoftDelete(ctx context.Context, id int64) (*models.Document, error) {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	d.DeletedAt = &now
	r.docs[id] = *d
	return d, nil
}

func (r *memDocumentRepo) ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Document
	for _, d := range r.docs {
		if d.TenantID == tc.TenantID() && d.FolderID == folderID && d.DeletedAt == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

// memGrantRepo is an in-memory GrantRepository enforcing the one-active-grant
// invariant the way the partial unique index does.
type memGrantRepo struct {
	grants map[int64]models.FolderGrant
	nextID int64
}

func newMemGrantRepo(grants ...models.FolderGrant) *memGrantRepo {
	r := &memGrantRepo{grants: make(map[int64]models.FolderGrant)}
	for _, g := range grants {
		r.grants[g.ID] = g
		if g.ID > r.nextID {
			r.nextID = g.ID
		}
	}
	return r
}

func (r *memGrantRepo) activeGrant(tenantID, folderID, userID int64) (models.FolderGrant, bool) {
	for _, g := range r.grants {
		if g.TenantID == tenantID && g.FolderID == folderID && g.UserID == userID && g.Active {
			return g, true
		}
	}
	return models.FolderGrant{}, false
}

func (r *memGrantRepo) Create(ctx context.Context, grant *models.FolderGrant) error {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return err
	}
	if existing, ok := r.activeGrant(tc.TenantID(), grant.FolderID, grant.UserID); ok {
		return &domain.DuplicateGrantError{
			Message:         fmt.Sprintf("an active grant already exists for folder %d and user %d", grant.FolderID, grant.UserID),
			ExistingGrantID: existing.ID,
		}
	}
	r.nextID++
	grant.ID = r.nextID
	grant.TenantID = tc.TenantID()
	grant.Active = true
	grant.GrantedAt = time.Now().UTC()
	r.grants[grant.ID] = *grant
	return nil
}

func (r *memGrantRepo) GetByID(ctx context.Context, id int64) (*models.FolderGrant, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	g, ok := r.grants[id]
	if !ok || g.TenantID != tc.TenantID() {
		return nil, fmt.Errorf("grant %d: %w", id, domain.ErrNotFound)
	}
	return &g, nil
}

func (r *memGrantRepo) ListActiveForUser(ctx context.Context, userID int64) ([]models.FolderGrant, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.FolderGrant
	for _, g := range r.grants {
		if g.TenantID == tc.TenantID() && g.UserID == userID && g.Active {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGrantRepo) ListByFolder(ctx context.Context, folderID int64) ([]models.FolderGrant, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.FolderGrant
	for _, g := range r.grants {
		if g.TenantID == tc.TenantID() && g.FolderID == folderID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGrantRepo) Revoke(ctx context.Context, id int64) (*models.FolderGrant, error) {
	g, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.Active {
		return nil, fmt.Errorf("grant %d: %w", id, domain.ErrNotFound)
	}
	now := time.Now().UTC()
	g.Active = false
	g.RevokedAt = &now
	r.grants[id] = *g
	return g, nil
}

func (r *memGrantRepo) Reactivate(ctx context.Context, id int64) (*models.FolderGrant, error) {
	g, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Active {
		return nil, fmt.Errorf("grant %d: %w", id, domain.ErrNotFound)
	}
	if existing, ok := r.activeGrant(g.TenantID, g.FolderID, g.UserID); ok {
		return nil, &domain.DuplicateGrantError{
			Message:         fmt.Sprintf("an active grant already exists for folder %d and user %d", g.FolderID, g.UserID),
			ExistingGrantID: existing.ID,
		}
	}
	g.Active = true
	g.RevokedAt = nil
	r.grants[id] = *g
	return g, nil
}
