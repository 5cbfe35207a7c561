package versioning

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/domain"
	models "quill/internal/domain/models/versioning"
	"quill/internal/domain/repositories"
	versioningRepo "quill/internal/domain/repositories/versioning"
	versioningSvc "quill/internal/domain/services/versioning"
	"quill/internal/metrics"
)

// restoreService implements the RestoreService interface
type restoreService struct {
	docRepo    versioningRepo.DocumentRepository
	commitRepo versioningRepo.CommitRepository
	txManager  repositories.TransactionManager
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewRestoreService creates a new restore service
func NewRestoreService(deps *Dependencies) versioningSvc.RestoreService {
	return &restoreService{
		docRepo:    deps.DocRepo,
		commitRepo: deps.CommitRepo,
		txManager:  deps.TxManager,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Restore points the document at commitID. No commit, tree or blob is
// created or removed; the next commit simply uses commitID as its parent.
func (s *restoreService) Restore(ctx context.Context, documentID, commitID string) (*models.Document, error) {
	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetForUpdate(txCtx, documentID)
		if err != nil {
			return err
		}

		commit, err := s.commitRepo.GetByID(txCtx, commitID)
		if err != nil {
			return err
		}
		if commit.DocumentID != doc.ID {
			return fmt.Errorf("commit %s, document %s: %w", commitID, documentID, domain.ErrCommitDocumentMismatch)
		}

		doc.CurrentCommitID = &commit.ID
		return s.docRepo.SetCurrentCommit(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRestore()
	s.logger.Info("document restored",
		"document_id", documentID,
		"commit_id", commitID,
	)

	return doc, nil
}
