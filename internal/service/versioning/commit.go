package versioning

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
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

// commitNameLayout renders commit timestamps, e.g. "14 October 2026 at 3:04 pm"
const commitNameLayout = "2 January 2006 at 3:04 pm"

// RootCommitName is the name of the commit created together with a document
const RootCommitName = "Initial commit"

// Dependencies groups what every versioning service needs
type Dependencies struct {
	DocRepo    versioningRepo.DocumentRepository
	CommitRepo versioningRepo.CommitRepository
	TxManager  repositories.TransactionManager
	Decomposer versioningSvc.BlockDecomposer
	Blobs      versioningSvc.BlobStore
	Trees      versioningSvc.TreeStore
	Authorizer services.DocumentAuthorizer
	Metrics    *metrics.Metrics
	Location   *time.Location // Time zone of generated commit names
	Logger     *slog.Logger
}

// commitService implements the CommitService interface
type commitService struct {
	docRepo    versioningRepo.DocumentRepository
	commitRepo versioningRepo.CommitRepository
	txManager  repositories.TransactionManager
	decomposer versioningSvc.BlockDecomposer
	blobs      versioningSvc.BlobStore
	trees      versioningSvc.TreeStore
	authorizer services.DocumentAuthorizer
	snapshots  *snapshotReader
	metrics    *metrics.Metrics
	location   *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewCommitService creates a new commit service
func NewCommitService(deps *Dependencies) versioningSvc.CommitService {
	return newCommitService(deps)
}

func newCommitService(deps *Dependencies) *commitService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &commitService{
		docRepo:    deps.DocRepo,
		commitRepo: deps.CommitRepo,
		txManager:  deps.TxManager,
		decomposer: deps.Decomposer,
		blobs:      deps.Blobs,
		trees:      deps.Trees,
		authorizer: deps.Authorizer,
		snapshots:  &snapshotReader{trees: deps.Trees, blobs: deps.Blobs},
		metrics:    deps.Metrics,
		location:   loc,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// Commit snapshots req.Content on top of the document's current commit.
// Reading the pointer, writing tree and commit, and advancing the pointer
// happen in one transaction.
func (s *commitService) Commit(ctx context.Context, req *versioningSvc.CommitRequest) (*models.Commit, error) {
	if req.AuthorID == "" {
		return nil, domain.ErrUnauthorized
	}

	blocks, err := s.decomposer.Decompose(req.Content)
	if err != nil {
		return nil, err
	}

	var commit *models.Commit
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetForUpdate(txCtx, req.DocumentID)
		if err != nil {
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

		if doc.CurrentCommitID == nil {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrCurrentCommitMissing)
		}
		current, err := s.commitRepo.GetByID(txCtx, *doc.CurrentCommitID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("document %s points at %s: %w", doc.ID, *doc.CurrentCommitID, domain.ErrCurrentCommitNotFound)
			}
			return err
		}
		currentTree, err := s.trees.Get(txCtx, current.TreeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("tree of current commit %s: %w: %w", current.ID, err, domain.ErrIntegrity)
			}
			return err
		}

		if slices.Equal(blobIDs, currentTree.BlobIDs) {
			return domain.ErrNoChanges
		}

		tree, err := s.trees.Create(txCtx, doc.ID, blobIDs)
		if err != nil {
			return err
		}

		count, err := s.commitRepo.CountByDocument(txCtx, doc.ID)
		if err != nil {
			return fmt.Errorf("count commits: %w", err)
		}

		now := s.now()
		commit = &models.Commit{
			DocumentID:     doc.ID,
			ParentCommitID: &current.ID,
			TreeID:         tree.ID,
			Name:           s.commitName(doc.Title, now),
			CommitNumber:   count + 1,
			AuthorID:       req.AuthorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.commitRepo.Create(txCtx, commit); err != nil {
			return err
		}

		return s.docRepo.AdvanceCurrentCommit(txCtx, doc.ID, current.ID, commit.ID)
	})
	if err != nil {
		s.recordCommitFailure(req.DocumentID, err)
		return nil, err
	}

	s.metrics.RecordCommit(metrics.OutcomeCreated)
	s.logger.Info("commit created",
		"document_id", commit.DocumentID,
		"commit_id", commit.ID,
		"commit_number", commit.CommitNumber,
		"blocks", len(blocks),
	)

	return commit, nil
}

func (s *commitService) recordCommitFailure(documentID string, err error) {
	switch {
	case errors.Is(err, domain.ErrNoChanges):
		s.metrics.RecordCommit(metrics.OutcomeNoChanges)
		s.logger.Debug("commit skipped, no changes", "document_id", documentID)
	case errors.Is(err, domain.ErrConsistency):
		s.metrics.RecordCommit(metrics.OutcomeConflict)
		s.logger.Error("commit rolled back: pointer moved", "document_id", documentID, "error", err)
	default:
		s.metrics.RecordCommit(metrics.OutcomeError)
		logIntegrity(s.logger, err, "document_id", documentID)
	}
}

func (s *commitService) commitName(title string, at time.Time) string {
	return fmt.Sprintf("%s | commit: %s", title, at.In(s.location).Format(commitNameLayout))
}

// GetCommit retrieves a commit
func (s *commitService) GetCommit(ctx context.Context, commitID string) (*models.Commit, error) {
	return s.commitRepo.GetByID(ctx, commitID)
}

// RenameCommit changes a commit's display name
func (s *commitService) RenameCommit(ctx context.Context, commitID string, req *versioningSvc.RenameCommitRequest) (*models.Commit, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.ErrEmptyName
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(1, config.MaxCommitNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	commit, err := s.commitRepo.UpdateName(ctx, commitID, req.Name, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("commit renamed", "commit_id", commitID)
	return commit, nil
}

// ListCommits returns one page of history, newest first
func (s *commitService) ListCommits(ctx context.Context, userID, documentID string, req *versioningSvc.ListCommitsRequest) (*models.CommitPage, error) {
	if err := s.authorizer.CanManageDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	limit := req.Limit
	if err := validation.Validate(limit, validation.Min(0)); err != nil {
		return nil, &domain.ValidationError{Field: "limit", Message: "limit must not be negative"}
	}
	switch {
	case limit == 0:
		limit = config.DefaultCommitPageSize
	case limit > config.MaxCommitPageSize:
		limit = config.MaxCommitPageSize
	}

	before, err := DecodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	// One extra row tells whether another page exists
	commits, err := s.commitRepo.ListByDocument(ctx, documentID, before, limit+1)
	if err != nil {
		return nil, err
	}

	page := &models.CommitPage{Commits: commits, IsDone: true}
	if len(commits) > limit {
		page.Commits = commits[:limit]
		page.IsDone = false
		page.NextCursor = EncodeCursor(page.Commits[limit-1].CommitNumber)
	}

	return page, nil
}

// EncodeCursor returns the opaque continuation token after commitNumber
func EncodeCursor(commitNumber int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(commitNumber)))
}

// DecodeCursor parses a continuation token. An empty cursor means the first page.
func DecodeCursor(cursor string) (*int, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, &domain.ValidationError{Field: "cursor", Message: "invalid cursor"}
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 1 {
		return nil, &domain.ValidationError{Field: "cursor", Message: "invalid cursor"}
	}
	return &n, nil
}

// Reconstruct rebuilds the document JSON stored by a commit
func (s *commitService) Reconstruct(ctx context.Context, commitID string) (json.RawMessage, error) {
	commit, err := s.commitRepo.GetByID(ctx, commitID)
	if err != nil {
		return nil, err
	}

	doc, err := s.snapshots.read(ctx, commit)
	if err != nil {
		logIntegrity(s.logger, err, "commit_id", commitID)
		return nil, err
	}
	return doc, nil
}

// GetCommitPath returns the ancestry of a commit, root first
func (s *commitService) GetCommitPath(ctx context.Context, commitID string) ([]models.Commit, error) {
	path, err := s.commitRepo.GetPath(ctx, commitID, config.MaxCommitPathDepth)
	if err != nil {
		return nil, err
	}

	if err := verifyChain(path); err != nil {
		logIntegrity(s.logger, err, "commit_id", commitID)
		return nil, err
	}

	if !path[0].IsRoot() {
		s.logger.Warn("commit path truncated",
			"commit_id", commitID,
			"max_depth", config.MaxCommitPathDepth,
		)
	}

	return path, nil
}

// verifyChain checks that path (root first) is a parent-linked chain of one
// document with strictly decreasing numbers toward the root and no repeats.
func verifyChain(path []models.Commit) error {
	seen := make(map[string]struct{}, len(path))
	for i, c := range path {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("cycle at commit %s: %w", c.ID, domain.ErrIntegrity)
		}
		seen[c.ID] = struct{}{}

		if i == 0 {
			continue
		}
		prev := path[i-1]
		if c.ParentCommitID == nil || *c.ParentCommitID != prev.ID {
			return fmt.Errorf("broken parent link at commit %s: %w", c.ID, domain.ErrIntegrity)
		}
		if c.DocumentID != prev.DocumentID || c.CommitNumber <= prev.CommitNumber {
			return fmt.Errorf("inconsistent ancestry at commit %s: %w", c.ID, domain.ErrIntegrity)
		}
	}

	if len(path) < config.MaxCommitPathDepth && len(path) > 0 && !path[0].IsRoot() {
		return fmt.Errorf("parent %s of commit %s is missing: %w", *path[0].ParentCommitID, path[0].ID, domain.ErrIntegrity)
	}
	return nil
}

// logIntegrity logs storage corruption at error level. Other errors are left
// to the caller.
func logIntegrity(logger *slog.Logger, err error, args ...any) {
	if !errors.Is(err, domain.ErrIntegrity) {
		return
	}
	logger.Error("storage integrity violation", append(args, "error", err)...)
}
