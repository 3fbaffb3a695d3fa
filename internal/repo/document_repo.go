package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/dbutil"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
)

type DocumentRepo struct {
	db dbutil.Queryer
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *DocumentRepo) WithTx(tx *sql.Tx) *DocumentRepo {
	return &DocumentRepo{db: tx}
}

var documentColumns = []string{"id", "title", "description", "classification", "owner_id", "status", "ctime", "mtime"}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":             doc.ID,
		"title":          doc.Title,
		"description":    doc.Description,
		"classification": doc.Classification,
		"owner_id":       doc.OwnerID,
		"status":         doc.Status,
		"ctime":          doc.Ctime,
		"mtime":          doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
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

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
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
	var d model.Document
	if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Classification, &d.OwnerID, &d.Status, &d.Ctime, &d.Mtime); err != nil {
		return nil, err
	}
	return &d, nil
}

// LockForUpdate takes the document's row lock for the duration of the
// enclosing transaction. Version promotion must hold this lock so two
// concurrent approvals against the same document serialize.
func (r *DocumentRepo) LockForUpdate(ctx context.Context, id string) error {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM documents WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return appErr.ErrNotFound
	}
	return nil
}

type DocumentFilter struct {
	OwnerID        string
	Classification string
	Status         string
	Limit          uint
	Offset         uint
}

// List returns document read models with owner display names and the current
// official version number resolved in one query.
func (r *DocumentRepo) List(ctx context.Context, filter DocumentFilter) ([]model.DocumentDetail, error) {
	sqlStr := `
		SELECT d.id, d.title, d.description, d.classification, d.owner_id, d.status, d.ctime, d.mtime,
		       COALESCE(u.name, ''), COALESCE(v.version, 0)
		FROM documents d
		LEFT JOIN users u ON u.id = d.owner_id
		LEFT JOIN document_versions v ON v.document_id = d.id AND v.is_official
		WHERE 1 = 1`
	args := make([]interface{}, 0, 4)
	if filter.OwnerID != "" {
		sqlStr += " AND d.owner_id = ?"
		args = append(args, filter.OwnerID)
	}
	if filter.Classification != "" {
		sqlStr += " AND d.classification = ?"
		args = append(args, filter.Classification)
	}
	if filter.Status != "" {
		sqlStr += " AND d.status = ?"
		args = append(args, filter.Status)
	}
	sqlStr += " ORDER BY d.ctime DESC"
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
	docs := make([]model.DocumentDetail, 0)
	for rows.Next() {
		var d model.DocumentDetail
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Classification, &d.OwnerID, &d.Status, &d.Ctime, &d.Mtime, &d.OwnerName, &d.OfficialVersion); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateMeta applies an explicit metadata patch. System-managed columns
// (status, timestamps) are not reachable through it.
func (r *DocumentRepo) UpdateMeta(ctx context.Context, id string, update map[string]interface{}, mtime int64) error {
	if len(update) == 0 {
		return nil
	}
	update["mtime"] = mtime
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, id, status string, mtime int64) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"status": status, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
