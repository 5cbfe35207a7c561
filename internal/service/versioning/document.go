package versioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quill/internal/config"
	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	"quill/internal/domain/repositories"
	versioningRepo "quill/internal/domain/repositories/versioning"
	"quill/internal/domain/services"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo    versioningRepo.DocumentRepository
	commitRepo versioningRepo.CommitRepository
	txManager  repositories.TransactionManager
	decomposer versioningSvc.BlockDecomposer
	blobs      versioningSvc.BlobStore
	trees      versioningSvc.TreeStore
	authorizer services.DocumentAuthorizer
	templates  versioningSvc.TemplateCatalog
	converter  versioningSvc.ContentConverter
	snapshots  *snapshotReader
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	deps *Dependencies,
	templates versioningSvc.TemplateCatalog,
	converter versioningSvc.ContentConverter,
) versioningSvc.DocumentService {
	return &documentService{
		docRepo:    deps.DocRepo,
		commitRepo: deps.CommitRepo,
		txManager:  deps.TxManager,
		decomposer: deps.Decomposer,
		blobs:      deps.Blobs,
		trees:      deps.Trees,
		authorizer: deps.Authorizer,
		templates:  templates,
		converter:  converter,
		snapshots:  &snapshotReader{trees: deps.Trees, blobs: deps.Blobs},
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// CreateDocument creates a document together with its root commit
func (s *documentService) CreateDocument(ctx context.Context, req *versioningSvc.CreateDocumentRequest) (*models.Document, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = config.DefaultDocumentTitle
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	content, err := s.initialContent(ctx, req)
	if err != nil {
		return nil, err
	}

	blocks, err := s.decomposer.Decompose(content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &models.Document{
		Title:     req.Title,
		OwnerID:   req.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}

		blobIDs := make([]string, 0, len(blocks))
		for _, block := range blocks {
			id, err := s.blobs.GetOrCreate(txCtx, doc.ID, block)
			if err != nil {
				return err
			}
			blobIDs = append(blobIDs, id)
		}

		tree, err := s.trees.Create(txCtx, doc.ID, blobIDs)
		if err != nil {
			return err
		}

		root := &models.Commit{
			DocumentID:   doc.ID,
			TreeID:       tree.ID,
			Name:         RootCommitName,
			CommitNumber: 1,
			AuthorID:     req.UserID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.commitRepo.Create(txCtx, root); err != nil {
			return err
		}

		if err := s.docRepo.InitializePointers(txCtx, doc.ID, root.ID); err != nil {
			return err
		}
		doc.CurrentCommitID = &root.ID
		doc.RootCommitID = &root.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordDocumentCreated()
	s.logger.Info("document created",
		"document_id", doc.ID,
		"root_commit_id", *doc.RootCommitID,
		"blocks", len(blocks),
	)

	return doc, nil
}

// initialContent picks the request content, then the template, then nothing
func (s *documentService) initialContent(ctx context.Context, req *versioningSvc.CreateDocumentRequest) (json.RawMessage, error) {
	if len(req.InitialContent) > 0 || req.TemplateID == "" {
		return req.InitialContent, nil
	}

	tmpl, err := s.templates.Get(req.TemplateID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(tmpl.InitialContent) == "" {
		return nil, nil
	}

	content, err := s.converter.Convert(ctx, tmpl.InitialContent)
	if err != nil {
		return nil, fmt.Errorf("convert template %s: %w", tmpl.ID, err)
	}
	return content, nil
}

func (s *documentService) validateCreateRequest(req *versioningSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Length(1, config.MaxDocumentTitleLength)),
	)
}

// GetDocument retrieves a document owned by userID
func (s *documentService) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if err := s.authorizer.CanManageDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.docRepo.GetByID(ctx, documentID)
}

// GetCurrentContent reconstructs the document at its current commit
func (s *documentService) GetCurrentContent(ctx context.Context, userID, documentID string) (json.RawMessage, error) {
	if err := s.authorizer.CanManageDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	content, err := s.currentContent(ctx, doc)
	if err != nil {
		logIntegrity(s.logger, err, "document_id", documentID)
		return nil, err
	}
	return content, nil
}

func (s *documentService) currentContent(ctx context.Context, doc *models.Document) (json.RawMessage, error) {
	if doc.CurrentCommitID == nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, domain.ErrCurrentCommitMissing)
	}

	commit, err := s.commitRepo.GetByID(ctx, *doc.CurrentCommitID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %s points at %s: %w", doc.ID, *doc.CurrentCommitID, domain.ErrCurrentCommitNotFound)
		}
		return nil, err
	}

	return s.snapshots.read(ctx, commit)
}

// RemoveDocument deletes a document and its entire history
func (s *documentService) RemoveDocument(ctx context.Context, userID, documentID string) error {
	if err := s.authorizer.CanManageDocument(ctx, userID, documentID); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.docRepo.Delete(txCtx, documentID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("document removed", "document_id", documentID)
	return nil
}

// ListTemplates returns the template gallery
func (s *documentService) ListTemplates() []models.Template {
	return s.templates.List()
}
