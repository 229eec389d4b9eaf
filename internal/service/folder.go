package service

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/audit"
	"docuvault/internal/config"
	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/domain/services"
	"docuvault/internal/tenant"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	docRepo    repositories.DocumentRepository
	authorizer services.Authorizer
	tx         repositories.TransactionManager
	auditor    *audit.Publisher
	logger     *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	folderRepo repositories.FolderRepository,
	docRepo repositories.DocumentRepository,
	authorizer services.Authorizer,
	tx repositories.TransactionManager,
	auditor *audit.Publisher,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		authorizer: authorizer,
		tx:         tx,
		auditor:    auditor,
		logger:     logger,
	}
}

// Create creates a folder. Root folders require the tenant ADMIN role since
// there is no parent whose ACL could be consulted; child folders require
// WRITE on the parent.
func (s *folderService) Create(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		if _, err := s.authorizer.Authorize(ctx, *req.ParentID, models.AccessWrite); err != nil {
			return nil, err
		}
	} else {
		tc, err := tenant.FromContext(ctx)
		if err != nil {
			return nil, err
		}
		if !tc.Can(tenant.CapManageGrants) {
			return nil, fmt.Errorf("root folder creation: %w", domain.ErrInsufficientAccess)
		}
	}

	folder := &models.Folder{
		ParentID: req.ParentID,
		Name:     req.Name,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"folder_id", folder.ID,
		"tenant_id", folder.TenantID,
		"parent_id", folder.ParentID,
	)
	s.auditor.Emit(ctx, models.AuditFolderCreated, folder.Name, map[string]any{"folder_id": folder.ID})

	return folder, nil
}

// Get retrieves a folder; requires READ.
func (s *folderService) Get(ctx context.Context, id int64) (*models.Folder, error) {
	if _, err := s.authorizer.Authorize(ctx, id, models.AccessRead); err != nil {
		return nil, err
	}
	return s.folderRepo.GetByID(ctx, id)
}

// Update renames and/or moves a folder; requires WRITE on the folder and,
// when moving, WRITE on the new parent as well.
func (s *folderService) Update(ctx context.Context, id int64, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name != nil {
		err := validation.Validate(*req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}

	if _, err := s.authorizer.Authorize(ctx, id, models.AccessWrite); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil && (folder.ParentID == nil || *req.ParentID != *folder.ParentID) {
		if *req.ParentID == id {
			return nil, fmt.Errorf("folder cannot be its own parent: %w", domain.ErrValidation)
		}
		if _, err := s.authorizer.Authorize(ctx, *req.ParentID, models.AccessWrite); err != nil {
			return nil, err
		}
		// The new parent's ancestor chain must not contain the folder being
		// moved; repointing under a descendant would loop the parent chain.
		chain, err := s.folderRepo.AncestorChain(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		for _, ancestor := range chain {
			if ancestor.ID == id {
				return nil, fmt.Errorf("folder %d cannot be moved under its own descendant: %w", id, domain.ErrValidation)
			}
		}
		folder.ParentID = req.ParentID
	}
	if req.Name != nil {
		folder.Name = *req.Name
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, models.AuditFolderUpdated, folder.Name, map[string]any{"folder_id": folder.ID})
	return folder, nil
}

// Delete soft-deletes an empty folder; requires WRITE. The emptiness checks
// and the delete run in one transaction so a concurrent insert cannot slip a
// child under a folder mid-delete.
func (s *folderService) Delete(ctx context.Context, id int64) (*models.Folder, error) {
	if _, err := s.authorizer.Authorize(ctx, id, models.AccessWrite); err != nil {
		return nil, err
	}

	var folder *models.Folder
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		children, err := s.folderRepo.ListChildren(ctx, &id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return fmt.Errorf("folder has %d child folders: %w", len(children), domain.ErrValidation)
		}
		docs, err := s.docRepo.ListByFolder(ctx, id)
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			return fmt.Errorf("folder has %d documents: %w", len(docs), domain.ErrValidation)
		}

		folder, err = s.folderRepo.SoftDelete(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder deleted", "folder_id", id, "tenant_id", folder.TenantID)
	s.auditor.Emit(ctx, models.AuditFolderDeleted, folder.Name, map[string]any{"folder_id": id})
	return folder, nil
}

// Tree returns the subtree rooted at rootID, including documents; requires
// READ on the root. Visibility is decided per node: a non-recursive grant on
// the root does not extend to descendants, so every folder below the root is
// checked against the caller's effective level and pruned when it resolves to
// NONE. A pruned folder hides its whole subtree.
func (s *folderService) Tree(ctx context.Context, rootID int64) (*models.FolderTreeNode, error) {
	tc, err := s.authorizer.Authorize(ctx, rootID, models.AccessRead)
	if err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*models.FolderTreeNode, len(folders))
	for i := range folders {
		nodes[folders[i].ID] = &models.FolderTreeNode{Folder: folders[i], Children: []*models.FolderTreeNode{}}
	}
	root, ok := nodes[rootID]
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", rootID, domain.ErrNotFound)
	}
	for _, node := range nodes {
		if node.ParentID == nil {
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	root.Children, err = s.pruneInvisible(ctx, tc.UserID(), root.Children)
	if err != nil {
		return nil, err
	}

	if err := s.attachDocuments(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}

// pruneInvisible drops nodes the user's effective level resolves to NONE on,
// together with their subtrees.
func (s *folderService) pruneInvisible(ctx context.Context, userID int64, nodes []*models.FolderTreeNode) ([]*models.FolderTreeNode, error) {
	visible := make([]*models.FolderTreeNode, 0, len(nodes))
	for _, node := range nodes {
		level, err := s.authorizer.EffectiveLevel(ctx, userID, node.ID)
		if err != nil {
			return nil, err
		}
		if level == models.AccessNone {
			continue
		}
		node.Children, err = s.pruneInvisible(ctx, userID, node.Children)
		if err != nil {
			return nil, err
		}
		visible = append(visible, node)
	}
	return visible, nil
}

func (s *folderService) attachDocuments(ctx context.Context, node *models.FolderTreeNode) error {
	docs, err := s.docRepo.ListByFolder(ctx, node.ID)
	if err != nil {
		return err
	}
	node.Documents = docs
	for _, child := range node.Children {
		if err := s.attachDocuments(ctx, child); err != nil {
			return err
		}
	}
	return nil
}
