package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/dbutil"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
)

type DraftRepo struct {
	db dbutil.Queryer
}

func NewDraftRepo(db *sql.DB) *DraftRepo {
	return &DraftRepo{db: db}
}

func (r *DraftRepo) WithTx(tx *sql.Tx) *DraftRepo {
	return &DraftRepo{db: tx}
}

var draftColumns = []string{"id", "document_id", "base_version_id", "name", "description", "status", "content_path", "content_size", "content_sha256", "created_by", "ctime", "mtime"}

func (r *DraftRepo) Create(ctx context.Context, d *model.Draft) error {
	data := map[string]interface{}{
		"id":              d.ID,
		"document_id":     d.DocumentID,
		"base_version_id": d.BaseVersionID,
		"name":            d.Name,
		"description":     d.Description,
		"status":          d.Status,
		"content_path":    d.Content.Path,
		"content_size":    d.Content.Size,
		"content_sha256":  d.Content.Sha256,
		"created_by":      d.CreatedBy,
		"ctime":           d.Ctime,
		"mtime":           d.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("drafts", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DraftRepo) GetByID(ctx context.Context, id string) (*model.Draft, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("drafts", where, draftColumns)
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
	var d model.Draft
	if err := rows.Scan(&d.ID, &d.DocumentID, &d.BaseVersionID, &d.Name, &d.Description, &d.Status, &d.Content.Path, &d.Content.Size, &d.Content.Sha256, &d.CreatedBy, &d.Ctime, &d.Mtime); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateFields applies an explicit patch while the draft is still in the
// given status. Zero rows affected means the draft vanished or left that
// status concurrently; the caller decides which error that is.
func (r *DraftRepo) UpdateFields(ctx context.Context, id, requiredStatus string, update map[string]interface{}, mtime int64) (bool, error) {
	if len(update) == 0 {
		return true, nil
	}
	update["mtime"] = mtime
	where := map[string]interface{}{
		"id":     id,
		"status": requiredStatus,
	}
	sqlStr, args, err := builder.BuildUpdate("drafts", where, update)
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

// UpdateStatus is a compare-and-swap on the draft status.
func (r *DraftRepo) UpdateStatus(ctx context.Context, id, from, to string, mtime int64) (bool, error) {
	where := map[string]interface{}{
		"id":     id,
		"status": from,
	}
	update := map[string]interface{}{
		"status": to,
		"mtime":  mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("drafts", where, update)
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

func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("drafts", map[string]interface{}{"id": id})
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

type DraftFilter struct {
	DocumentID string
	CreatedBy  string
	Status     string
	Limit      uint
	Offset     uint
}

func (r *DraftRepo) List(ctx context.Context, filter DraftFilter) ([]model.DraftDetail, error) {
	sqlStr := `
		SELECT dr.id, dr.document_id, dr.base_version_id, dr.name, dr.description, dr.status,
		       dr.content_path, dr.content_size, dr.content_sha256, dr.created_by, dr.ctime, dr.mtime,
		       COALESCE(u.name, ''), COALESCE(doc.title, '')
		FROM drafts dr
		LEFT JOIN users u ON u.id = dr.created_by
		LEFT JOIN documents doc ON doc.id = dr.document_id
		WHERE 1 = 1`
	args := make([]interface{}, 0, 4)
	if filter.DocumentID != "" {
		sqlStr += " AND dr.document_id = ?"
		args = append(args, filter.DocumentID)
	}
	if filter.CreatedBy != "" {
		sqlStr += " AND dr.created_by = ?"
		args = append(args, filter.CreatedBy)
	}
	if filter.Status != "" {
		sqlStr += " AND dr.status = ?"
		args = append(args, filter.Status)
	}
	sqlStr += " ORDER BY dr.ctime DESC"
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
	drafts := make([]model.DraftDetail, 0)
	for rows.Next() {
		var d model.DraftDetail
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.BaseVersionID, &d.Name, &d.Description, &d.Status, &d.Content.Path, &d.Content.Size, &d.Content.Sha256, &d.CreatedBy, &d.Ctime, &d.Mtime, &d.CreatorName, &d.DocumentTitle); err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}
