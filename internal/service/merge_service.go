package service

import (
	"context"
	"database/sql"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/timeutil"
	"github.com/pharmatrust/docvault/internal/policy"
	"github.com/pharmatrust/docvault/internal/repo"
)

// MergeService is the approval state machine. Submit moves a draft under
// review; Approve promotes its content to the next official version; Reject
// hands the draft back to its creator. Approval is the only path that mutates
// the official version timeline after document creation.
type MergeService struct {
	db       *sql.DB
	merges   *repo.MergeRequestRepo
	drafts   *repo.DraftRepo
	docs     *repo.DocumentRepo
	versions *repo.VersionRepo
	users    *repo.UserRepo
	audit    *AuditService
}

func NewMergeService(db *sql.DB, merges *repo.MergeRequestRepo, drafts *repo.DraftRepo, docs *repo.DocumentRepo, versions *repo.VersionRepo, users *repo.UserRepo, audit *AuditService) *MergeService {
	return &MergeService{db: db, merges: merges, drafts: drafts, docs: docs, versions: versions, users: users, audit: audit}
}

type SubmitInput struct {
	DraftID    string
	ApproverID string
	Summary    string
}

// Submit creates a pending merge request for an in_progress draft. The draft
// status flip and the request insert share one transaction: either both land
// or neither does, and the pending-per-draft unique index plus the status CAS
// make a concurrent double submit a conflict.
func (s *MergeService) Submit(ctx context.Context, actor model.Actor, input SubmitInput, prov model.Provenance) (*model.MergeRequest, error) {
	if input.DraftID == "" || input.ApproverID == "" {
		return nil, appErr.ErrInvalid
	}
	draft, err := s.drafts.GetByID(ctx, input.DraftID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateDraft(actor, draft.CreatedBy) {
		return nil, appErr.ErrForbidden
	}
	if draft.Status != model.DraftStatusInProgress {
		return nil, appErr.ErrConflict
	}
	approver, err := s.users.GetByID(ctx, input.ApproverID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrInvalid
		}
		return nil, err
	}
	if approver.State != model.UserStateActive || !policy.CanBeApprover(approver.Role) {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	request := &model.MergeRequest{
		ID:         newID(),
		DraftID:    draft.ID,
		DocumentID: draft.DocumentID,
		ApproverID: approver.ID,
		Summary:    input.Summary,
		Status:     model.MergeStatusPending,
		CreatedBy:  actor.ID,
		Ctime:      now,
		Mtime:      now,
	}
	err = repo.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := s.drafts.WithTx(tx).UpdateStatus(ctx, draft.ID, model.DraftStatusInProgress, model.DraftStatusPendingApproval, now)
		if err != nil {
			return err
		}
		if !ok {
			return appErr.ErrConflict
		}
		return s.merges.WithTx(tx).Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.AuditMergeRequestCreated,
		AuditRefs{DocumentID: draft.DocumentID, DraftID: draft.ID, MergeRequestID: request.ID}, input.Summary, prov)
	return request, nil
}

// Approve retires the current official version and promotes the draft's
// content to the next one, all within a single transaction:
//
//  1. lock the document row, serializing promotions per document
//  2. CAS the merge request pending -> approved
//  3. next = max(version)+1, demote officials, insert the new official row
//  4. draft -> approved
//
// A request that is no longer pending fails the CAS and surfaces as
// ErrForbidden without touching the version store.
func (s *MergeService) Approve(ctx context.Context, actor model.Actor, requestID string, prov model.Provenance) (*model.DocumentVersion, error) {
	if !policy.CanDecideMergeRequest(actor) {
		return nil, appErr.ErrForbidden
	}
	request, err := s.merges.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != model.MergeStatusPending {
		return nil, appErr.ErrForbidden
	}
	now := timeutil.NowUnix()
	var promoted *model.DocumentVersion
	err = repo.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		docs := s.docs.WithTx(tx)
		merges := s.merges.WithTx(tx)
		drafts := s.drafts.WithTx(tx)
		versions := s.versions.WithTx(tx)

		if err := docs.LockForUpdate(ctx, request.DocumentID); err != nil {
			return err
		}
		ok, err := merges.Approve(ctx, request.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return appErr.ErrForbidden
		}
		draft, err := drafts.GetByID(ctx, request.DraftID)
		if err != nil {
			return err
		}
		next, err := versions.MaxVersion(ctx, request.DocumentID)
		if err != nil {
			return err
		}
		if err := versions.DemoteOfficial(ctx, request.DocumentID); err != nil {
			return err
		}
		promoted = &model.DocumentVersion{
			ID:         newID(),
			DocumentID: request.DocumentID,
			Version:    next + 1,
			Content:    draft.Content,
			IsOfficial: true,
			CreatedBy:  actor.ID,
			Ctime:      now,
		}
		if err := versions.Create(ctx, promoted); err != nil {
			return err
		}
		ok, err = drafts.UpdateStatus(ctx, draft.ID, model.DraftStatusPendingApproval, model.DraftStatusApproved, now)
		if err != nil {
			return err
		}
		if !ok {
			// pending request with a draft outside pending_approval means
			// the two rows disagree; abort rather than guess
			return appErr.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("merge request approved",
		zap.String("merge_request_id", request.ID),
		zap.String("document_id", request.DocumentID),
		zap.Int("version", promoted.Version))
	s.audit.Record(ctx, actor, model.AuditMergeRequestApproved,
		AuditRefs{DocumentID: request.DocumentID, DraftID: request.DraftID, MergeRequestID: request.ID}, "", prov)
	return promoted, nil
}

// Reject closes the request and hands the draft back to in_progress so its
// creator can revise and resubmit, to the same approver or another.
func (s *MergeService) Reject(ctx context.Context, actor model.Actor, requestID, reason string, prov model.Provenance) error {
	if !policy.CanDecideMergeRequest(actor) {
		return appErr.ErrForbidden
	}
	request, err := s.merges.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != model.MergeStatusPending {
		return appErr.ErrForbidden
	}
	now := timeutil.NowUnix()
	err = repo.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := s.merges.WithTx(tx).Reject(ctx, request.ID, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return appErr.ErrForbidden
		}
		ok, err = s.drafts.WithTx(tx).UpdateStatus(ctx, request.DraftID, model.DraftStatusPendingApproval, model.DraftStatusInProgress, now)
		if err != nil {
			return err
		}
		if !ok {
			return appErr.ErrConflict
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, actor, model.AuditMergeRequestRejected,
		AuditRefs{DocumentID: request.DocumentID, DraftID: request.DraftID, MergeRequestID: request.ID}, reason, prov)
	return nil
}

func (s *MergeService) Get(ctx context.Context, requestID string) (*model.MergeRequest, error) {
	return s.merges.GetByID(ctx, requestID)
}

func (s *MergeService) List(ctx context.Context, filter repo.MergeRequestFilter) ([]model.MergeRequestDetail, error) {
	return s.merges.List(ctx, filter)
}
