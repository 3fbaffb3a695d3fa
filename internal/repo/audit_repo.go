package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/dbutil"
)

// AuditRepo is strictly append-only. There is no update or delete method.
type AuditRepo struct {
	db dbutil.Queryer
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

var auditColumns = []string{"id", "actor_id", "actor_name", "action", "document_id", "draft_id", "merge_request_id", "detail", "ip", "user_agent", "ctime"}

func (r *AuditRepo) Create(ctx context.Context, e *model.AuditLogEntry) error {
	data := map[string]interface{}{
		"id":               e.ID,
		"actor_id":         e.ActorID,
		"actor_name":       e.ActorName,
		"action":           e.Action,
		"document_id":      e.DocumentID,
		"draft_id":         e.DraftID,
		"merge_request_id": e.MergeRequestID,
		"detail":           e.Detail,
		"ip":               e.IP,
		"user_agent":       e.UserAgent,
		"ctime":            e.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("audit_logs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

type AuditFilter struct {
	ActorID    string
	Action     string
	DocumentID string
	Limit      uint
	Offset     uint
}

func (r *AuditRepo) List(ctx context.Context, filter AuditFilter) ([]model.AuditLogEntry, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc",
	}
	if filter.ActorID != "" {
		where["actor_id"] = filter.ActorID
	}
	if filter.Action != "" {
		where["action"] = filter.Action
	}
	if filter.DocumentID != "" {
		where["document_id"] = filter.DocumentID
	}
	if filter.Limit > 0 {
		where["_limit"] = []uint{filter.Offset, filter.Limit}
	}
	sqlStr, args, err := builder.BuildSelect("audit_logs", where, auditColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	entries := make([]model.AuditLogEntry, 0)
	for rows.Next() {
		var e model.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.DocumentID, &e.DraftID, &e.MergeRequestID, &e.Detail, &e.IP, &e.UserAgent, &e.Ctime); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *AuditRepo) ListByDocument(ctx context.Context, docID string) ([]model.AuditLogEntry, error) {
	return r.List(ctx, AuditFilter{DocumentID: docID})
}
