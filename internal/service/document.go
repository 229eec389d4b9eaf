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

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type documentService struct {
	docRepo    repositories.DocumentRepository
	authorizer services.Authorizer
	auditor    *audit.Publisher
	logger     *slog.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	authorizer services.Authorizer,
	auditor *audit.Publisher,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		authorizer: authorizer,
		auditor:    auditor,
		logger:     logger,
	}
}

// Create creates a document; requires WRITE on the containing folder.
func (s *documentService) Create(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&req.StorageKey, validation.Required),
		validation.Field(&req.SizeBytes, validation.Min(int64(0))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	tc, err := s.authorizer.Authorize(ctx, req.FolderID, models.AccessWrite)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		FolderID:   req.FolderID,
		Name:       req.Name,
		StorageKey: req.StorageKey,
		SizeBytes:  req.SizeBytes,
		CreatedBy:  tc.UserID(),
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"document_id", doc.ID,
		"tenant_id", doc.TenantID,
		"folder_id", doc.FolderID,
	)
	s.auditor.Emit(ctx, models.AuditDocumentCreated, doc.Name, map[string]any{"document_id": doc.ID})

	return doc, nil
}

// Get retrieves a document; requires READ on its folder. The tenant
// predicate already hides foreign-tenant documents; the ACL check decides
// in-tenant visibility, and a denial reads as not-found.
func (s *documentService) Get(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Authorize(ctx, doc.FolderID, models.AccessRead); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update renames or repoints a document; requires WRITE on its folder.
func (s *documentService) Update(ctx context.Context, id int64, req *services.UpdateDocumentRequest) (*models.Document, error) {
	if req.Name != nil {
		err := validation.Validate(*req.Name, validation.Required, validation.Length(1, config.MaxDocumentNameLength))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Authorize(ctx, doc.FolderID, models.AccessWrite); err != nil {
		return nil, err
	}

	if req.Name != nil {
		doc.Name = *req.Name
	}
	if req.StorageKey != nil {
		doc.StorageKey = *req.StorageKey
	}
	if req.SizeBytes != nil {
		doc.SizeBytes = *req.SizeBytes
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, models.AuditDocumentUpdated, doc.Name, map[string]any{"document_id": doc.ID})
	return doc, nil
}

// Delete soft-deletes a document; requires WRITE on its folder.
func (s *documentService) Delete(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Authorize(ctx, doc.FolderID, models.AccessWrite); err != nil {
		return nil, err
	}

	deleted, err := s.docRepo.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document deleted", "document_id", id, "tenant_id", deleted.TenantID)
	s.auditor.Emit(ctx, models.AuditDocumentDeleted, deleted.Name, map[string]any{"document_id": id})
	return deleted, nil
}

// ListByFolder lists the documents in a folder; requires READ.
func (s *documentService) ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error) {
	if _, err := s.authorizer.Authorize(ctx, folderID, models.AccessRead); err != nil {
		return nil, err
	}
	return s.docRepo.ListByFolder(ctx, folderID)
}
