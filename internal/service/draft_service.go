package service

import (
	"context"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/timeutil"
	"github.com/pharmatrust/docvault/internal/policy"
	"github.com/pharmatrust/docvault/internal/repo"
)

// DraftService owns the mutable working copies. Write access is exclusive to
// the creator (admin bypasses); everything else is read-only.
type DraftService struct {
	drafts   *repo.DraftRepo
	docs     *repo.DocumentRepo
	versions *repo.VersionRepo
	merges   *repo.MergeRequestRepo
	audit    *AuditService
}

func NewDraftService(drafts *repo.DraftRepo, docs *repo.DocumentRepo, versions *repo.VersionRepo, merges *repo.MergeRequestRepo, audit *AuditService) *DraftService {
	return &DraftService{drafts: drafts, docs: docs, versions: versions, merges: merges, audit: audit}
}

type DraftCreateInput struct {
	DocumentID    string
	BaseVersionID string
	Name          string
	Description   string
	Content       model.ContentRef
}

func (s *DraftService) Create(ctx context.Context, actor model.Actor, input DraftCreateInput, prov model.Provenance) (*model.Draft, error) {
	if input.Name == "" || input.DocumentID == "" || input.BaseVersionID == "" {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.docs.GetByID(ctx, input.DocumentID); err != nil {
		return nil, err
	}
	base, err := s.versions.GetByID(ctx, input.BaseVersionID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrInvalid
		}
		return nil, err
	}
	if base.DocumentID != input.DocumentID {
		return nil, appErr.ErrInvalid
	}
	content := input.Content
	if content.Path == "" {
		// branch from the base snapshot until the author uploads new bytes
		content = base.Content
	}
	now := timeutil.NowUnix()
	draft := &model.Draft{
		ID:            newID(),
		DocumentID:    input.DocumentID,
		BaseVersionID: input.BaseVersionID,
		Name:          input.Name,
		Description:   input.Description,
		Status:        model.DraftStatusInProgress,
		Content:       content,
		CreatedBy:     actor.ID,
		Ctime:         now,
		Mtime:         now,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.AuditDraftCreated, AuditRefs{DocumentID: draft.DocumentID, DraftID: draft.ID}, draft.Name, prov)
	return draft, nil
}

func (s *DraftService) Get(ctx context.Context, draftID string) (*model.Draft, error) {
	return s.drafts.GetByID(ctx, draftID)
}

func (s *DraftService) List(ctx context.Context, filter repo.DraftFilter) ([]model.DraftDetail, error) {
	return s.drafts.List(ctx, filter)
}

// DraftPatch enumerates the caller-mutable draft fields. Status, base version
// and ownership are system-managed and not patchable.
type DraftPatch struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Content     *model.ContentRef `json:"content"`
}

func (p DraftPatch) changes() map[string]interface{} {
	update := map[string]interface{}{}
	if p.Name != nil {
		update["name"] = *p.Name
	}
	if p.Description != nil {
		update["description"] = *p.Description
	}
	if p.Content != nil {
		update["content_path"] = p.Content.Path
		update["content_size"] = p.Content.Size
		update["content_sha256"] = p.Content.Sha256
	}
	return update
}

// Update patches a draft. Only in_progress drafts are editable: a draft under
// review or already approved refuses mutation with ErrConflict. The status
// check rides inside the UPDATE's WHERE clause so an edit racing an approval
// cannot slip through.
func (s *DraftService) Update(ctx context.Context, actor model.Actor, draftID string, patch DraftPatch, prov model.Provenance) (*model.Draft, error) {
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateDraft(actor, draft.CreatedBy) {
		return nil, appErr.ErrForbidden
	}
	if draft.Status != model.DraftStatusInProgress {
		return nil, appErr.ErrConflict
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, appErr.ErrInvalid
	}
	if patch.Content != nil && patch.Content.Path == "" {
		return nil, appErr.ErrInvalid
	}
	update := patch.changes()
	if len(update) == 0 {
		return draft, nil
	}
	ok, err := s.drafts.UpdateFields(ctx, draftID, model.DraftStatusInProgress, update, timeutil.NowUnix())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErr.ErrConflict
	}
	s.audit.Record(ctx, actor, model.AuditDraftUpdated, AuditRefs{DocumentID: draft.DocumentID, DraftID: draftID}, "", prov)
	return s.drafts.GetByID(ctx, draftID)
}

// Delete removes a draft. A draft with an outstanding pending merge request
// is blocked with ErrConflict rather than cascade-cancelling the request;
// the submitter must withdraw via rejection first.
func (s *DraftService) Delete(ctx context.Context, actor model.Actor, draftID string, prov model.Provenance) error {
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return err
	}
	if !policy.CanMutateDraft(actor, draft.CreatedBy) {
		return appErr.ErrForbidden
	}
	pending, err := s.merges.HasPendingForDraft(ctx, draftID)
	if err != nil {
		return err
	}
	if pending || draft.Status == model.DraftStatusPendingApproval {
		return appErr.ErrConflict
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, model.AuditDraftDeleted, AuditRefs{DocumentID: draft.DocumentID, DraftID: draftID}, draft.Name, prov)
	return nil
}
