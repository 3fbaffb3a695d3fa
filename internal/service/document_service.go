package service

import (
	"context"
	"database/sql"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/timeutil"
	"github.com/pharmatrust/docvault/internal/policy"
	"github.com/pharmatrust/docvault/internal/repo"
)

// DocumentService owns document metadata and the read side of the official
// version timeline. Version mutation after creation happens only through the
// merge workflow.
type DocumentService struct {
	db       *sql.DB
	docs     *repo.DocumentRepo
	versions *repo.VersionRepo
	audit    *AuditService
}

func NewDocumentService(db *sql.DB, docs *repo.DocumentRepo, versions *repo.VersionRepo, audit *AuditService) *DocumentService {
	return &DocumentService{db: db, docs: docs, versions: versions, audit: audit}
}

type DocumentCreateInput struct {
	Title          string
	Description    string
	Classification string
	Content        model.ContentRef
}

// Create inserts the document and its initial official version atomically.
// The unique (document_id, version) index makes a duplicate version 1 a
// conflict, so re-running creation against the same id cannot fork history.
func (s *DocumentService) Create(ctx context.Context, actor model.Actor, input DocumentCreateInput, prov model.Provenance) (*model.Document, error) {
	if input.Title == "" || input.Content.Path == "" {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	doc := &model.Document{
		ID:             newID(),
		Title:          input.Title,
		Description:    input.Description,
		Classification: input.Classification,
		OwnerID:        actor.ID,
		Status:         model.DocumentStatusActive,
		Ctime:          now,
		Mtime:          now,
	}
	err := repo.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.docs.WithTx(tx).Create(ctx, doc); err != nil {
			return err
		}
		return s.versions.WithTx(tx).Create(ctx, &model.DocumentVersion{
			ID:         newID(),
			DocumentID: doc.ID,
			Version:    1,
			Content:    input.Content,
			IsOfficial: true,
			CreatedBy:  actor.ID,
			Ctime:      now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.AuditDocumentCreated, AuditRefs{DocumentID: doc.ID}, doc.Title, prov)
	return doc, nil
}

// CreateInitialVersion backfills version 1 for a document that somehow has no
// versions. Returns ErrConflict when version 1 already exists.
func (s *DocumentService) CreateInitialVersion(ctx context.Context, actor model.Actor, docID string, content model.ContentRef) (*model.DocumentVersion, error) {
	if _, err := s.docs.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	v := &model.DocumentVersion{
		ID:         newID(),
		DocumentID: docID,
		Version:    1,
		Content:    content,
		IsOfficial: true,
		CreatedBy:  actor.ID,
		Ctime:      timeutil.NowUnix(),
	}
	if err := s.versions.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *DocumentService) Get(ctx context.Context, docID string) (*model.DocumentDetail, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	detail := &model.DocumentDetail{Document: *doc}
	official, err := s.versions.GetOfficial(ctx, docID)
	if err != nil && !appErr.IsNotFound(err) {
		return nil, err
	}
	if official != nil {
		detail.OfficialVersion = official.Version
	}
	return detail, nil
}

func (s *DocumentService) List(ctx context.Context, filter repo.DocumentFilter) ([]model.DocumentDetail, error) {
	return s.docs.List(ctx, filter)
}

// DocumentPatch enumerates the caller-mutable metadata fields. Status and
// timestamps are system-managed and deliberately absent.
type DocumentPatch struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Classification *string `json:"classification"`
}

func (p DocumentPatch) changes() map[string]interface{} {
	update := map[string]interface{}{}
	if p.Title != nil {
		update["title"] = *p.Title
	}
	if p.Description != nil {
		update["description"] = *p.Description
	}
	if p.Classification != nil {
		update["classification"] = *p.Classification
	}
	return update
}

func (s *DocumentService) UpdateMeta(ctx context.Context, actor model.Actor, docID string, patch DocumentPatch, prov model.Provenance) error {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.OwnerID != actor.ID && !policy.CanAdminister(actor) {
		return appErr.ErrForbidden
	}
	if patch.Title != nil && *patch.Title == "" {
		return appErr.ErrInvalid
	}
	update := patch.changes()
	if len(update) == 0 {
		return nil
	}
	if err := s.docs.UpdateMeta(ctx, docID, update, timeutil.NowUnix()); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, model.AuditDocumentUpdated, AuditRefs{DocumentID: docID}, "", prov)
	return nil
}

// Archive is the soft lifecycle end: documents are never hard-deleted.
func (s *DocumentService) Archive(ctx context.Context, actor model.Actor, docID string, prov model.Provenance) error {
	if !policy.CanAdminister(actor) {
		return appErr.ErrForbidden
	}
	if err := s.docs.UpdateStatus(ctx, docID, model.DocumentStatusArchived, timeutil.NowUnix()); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, model.AuditDocumentArchived, AuditRefs{DocumentID: docID}, "", prov)
	return nil
}

func (s *DocumentService) GetOfficialVersion(ctx context.Context, docID string) (*model.DocumentVersion, error) {
	return s.versions.GetOfficial(ctx, docID)
}

func (s *DocumentService) ListVersions(ctx context.Context, docID string) ([]model.DocumentVersionSummary, error) {
	if _, err := s.docs.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	return s.versions.ListSummaries(ctx, docID)
}

func (s *DocumentService) GetVersion(ctx context.Context, docID string, version int) (*model.DocumentVersion, error) {
	return s.versions.GetByVersion(ctx, docID, version)
}
