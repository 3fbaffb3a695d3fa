package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/dbutil"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
)

type MergeRequestRepo struct {
	db dbutil.Queryer
}

func NewMergeRequestRepo(db *sql.DB) *MergeRequestRepo {
	return &MergeRequestRepo{db: db}
}

func (r *MergeRequestRepo) WithTx(tx *sql.Tx) *MergeRequestRepo {
	return &MergeRequestRepo{db: tx}
}

var mergeColumns = []string{"id", "draft_id", "document_id", "approver_id", "summary", "status", "rejection_reason", "approved_at", "rejected_at", "created_by", "ctime", "mtime"}

// Create inserts a pending merge request. The partial unique index on
// (draft_id) WHERE status = 'pending' turns a second outstanding request for
// the same draft into ErrConflict.
func (r *MergeRequestRepo) Create(ctx context.Context, m *model.MergeRequest) error {
	data := map[string]interface{}{
		"id":               m.ID,
		"draft_id":         m.DraftID,
		"document_id":      m.DocumentID,
		"approver_id":      m.ApproverID,
		"summary":          m.Summary,
		"status":           m.Status,
		"rejection_reason": m.RejectionReason,
		"approved_at":      m.ApprovedAt,
		"rejected_at":      m.RejectedAt,
		"created_by":       m.CreatedBy,
		"ctime":            m.Ctime,
		"mtime":            m.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("merge_requests", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsUniqueViolation(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *MergeRequestRepo) GetByID(ctx context.Context, id string) (*model.MergeRequest, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("merge_requests", where, mergeColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var m model.MergeRequest
	if err := rows.Scan(&m.ID, &m.DraftID, &m.DocumentID, &m.ApproverID, &m.Summary, &m.Status, &m.RejectionReason, &m.ApprovedAt, &m.RejectedAt, &m.CreatedBy, &m.Ctime, &m.Mtime); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MergeRequestRepo) HasPendingForDraft(ctx context.Context, draftID string) (bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT 1 FROM merge_requests WHERE draft_id = $1 AND status = 'pending' LIMIT 1", draftID)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	return rows.Next(), rows.Err()
}

// Approve flips pending -> approved as a compare-and-swap. Returns false when
// the request was not pending, which the workflow treats as a caller bug.
func (r *MergeRequestRepo) Approve(ctx context.Context, id string, approvedAt int64) (bool, error) {
	return r.decide(ctx, id, map[string]interface{}{
		"status":      model.MergeStatusApproved,
		"approved_at": approvedAt,
		"mtime":       approvedAt,
	})
}

// Reject flips pending -> rejected recording the reason.
func (r *MergeRequestRepo) Reject(ctx context.Context, id, reason string, rejectedAt int64) (bool, error) {
	return r.decide(ctx, id, map[string]interface{}{
		"status":           model.MergeStatusRejected,
		"rejection_reason": reason,
		"rejected_at":      rejectedAt,
		"mtime":            rejectedAt,
	})
}

func (r *MergeRequestRepo) decide(ctx context.Context, id string, update map[string]interface{}) (bool, error) {
	where := map[string]interface{}{
		"id":     id,
		"status": model.MergeStatusPending,
	}
	sqlStr, args, err := builder.BuildUpdate("merge_requests", where, update)
	if err != nil {
		return false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type MergeRequestFilter struct {
	DocumentID string
	DraftID    string
	ApproverID string
	CreatedBy  string
	Status     string
	Limit      uint
	Offset     uint
}

func (r *MergeRequestRepo) List(ctx context.Context, filter MergeRequestFilter) ([]model.MergeRequestDetail, error) {
	sqlStr := `
		SELECT m.id, m.draft_id, m.document_id, m.approver_id, m.summary, m.status,
		       m.rejection_reason, m.approved_at, m.rejected_at, m.created_by, m.ctime, m.mtime,
		       COALESCE(dr.name, ''), COALESCE(doc.title, ''), COALESCE(cu.name, ''), COALESCE(au.name, '')
		FROM merge_requests m
		LEFT JOIN drafts dr ON dr.id = m.draft_id
		LEFT JOIN documents doc ON doc.id = m.document_id
		LEFT JOIN users cu ON cu.id = m.created_by
		LEFT JOIN users au ON au.id = m.approver_id
		WHERE 1 = 1`
	args := make([]interface{}, 0, 6)
	if filter.DocumentID != "" {
		sqlStr += " AND m.document_id = ?"
		args = append(args, filter.DocumentID)
	}
	if filter.DraftID != "" {
		sqlStr += " AND m.draft_id = ?"
		args = append(args, filter.DraftID)
	}
	if filter.ApproverID != "" {
		sqlStr += " AND m.approver_id = ?"
		args = append(args, filter.ApproverID)
	}
	if filter.CreatedBy != "" {
		sqlStr += " AND m.created_by = ?"
		args = append(args, filter.CreatedBy)
	}
	if filter.Status != "" {
		sqlStr += " AND m.status = ?"
		args = append(args, filter.Status)
	}
	sqlStr += " ORDER BY m.ctime DESC"
	if filter.Limit > 0 {
		sqlStr += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.MergeRequestDetail, 0)
	for rows.Next() {
		var m model.MergeRequestDetail
		if err := rows.Scan(&m.ID, &m.DraftID, &m.DocumentID, &m.ApproverID, &m.Summary, &m.Status, &m.RejectionReason, &m.ApprovedAt, &m.RejectedAt, &m.CreatedBy, &m.Ctime, &m.Mtime, &m.DraftName, &m.DocumentTitle, &m.CreatorName, &m.ApproverName); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
