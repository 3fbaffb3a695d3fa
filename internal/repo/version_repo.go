package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/dbutil"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
)

// VersionRepo owns the append-only official version timeline. Version rows
// are immutable once written; only is_official flips, and only inside the
// promotion transaction.
type VersionRepo struct {
	db dbutil.Queryer
}

func NewVersionRepo(db *sql.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

func (r *VersionRepo) WithTx(tx *sql.Tx) *VersionRepo {
	return &VersionRepo{db: tx}
}

var versionColumns = []string{"id", "document_id", "version", "content_path", "content_size", "content_sha256", "is_official", "created_by", "ctime"}

func (r *VersionRepo) Create(ctx context.Context, v *model.DocumentVersion) error {
	data := map[string]interface{}{
		"id":             v.ID,
		"document_id":    v.DocumentID,
		"version":        v.Version,
		"content_path":   v.Content.Path,
		"content_size":   v.Content.Size,
		"content_sha256": v.Content.Sha256,
		"is_official":    v.IsOfficial,
		"created_by":     v.CreatedBy,
		"ctime":          v.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("document_versions", []map[string]interface{}{data})
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

func (r *VersionRepo) scanOne(rows *sql.Rows) (*model.DocumentVersion, error) {
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var v model.DocumentVersion
	if err := rows.Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content.Path, &v.Content.Size, &v.Content.Sha256, &v.IsOfficial, &v.CreatedBy, &v.Ctime); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VersionRepo) GetByID(ctx context.Context, id string) (*model.DocumentVersion, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("document_versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	return r.scanOne(rows)
}

func (r *VersionRepo) GetOfficial(ctx context.Context, docID string) (*model.DocumentVersion, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"is_official": true,
	}
	sqlStr, args, err := builder.BuildSelect("document_versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	return r.scanOne(rows)
}

func (r *VersionRepo) GetByVersion(ctx context.Context, docID string, version int) (*model.DocumentVersion, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"version":     version,
	}
	sqlStr, args, err := builder.BuildSelect("document_versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	return r.scanOne(rows)
}

// MaxVersion returns the highest version number for the document, 0 when the
// document has no versions. Call it only while holding the document row lock.
func (r *VersionRepo) MaxVersion(ctx context.Context, docID string) (int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM document_versions WHERE document_id = $1", docID)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, rows.Err()
	}
	var max int
	if err := rows.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// DemoteOfficial clears the official flag on every version of the document.
func (r *VersionRepo) DemoteOfficial(ctx context.Context, docID string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE document_versions SET is_official = FALSE WHERE document_id = $1 AND is_official", docID)
	return err
}

func (r *VersionRepo) List(ctx context.Context, docID string) ([]model.DocumentVersion, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"_orderby":    "version desc",
	}
	sqlStr, args, err := builder.BuildSelect("document_versions", where, versionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	versions := make([]model.DocumentVersion, 0)
	for rows.Next() {
		var v model.DocumentVersion
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content.Path, &v.Content.Size, &v.Content.Sha256, &v.IsOfficial, &v.CreatedBy, &v.Ctime); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// ListSummaries is the read model for version listings: no content refs,
// creator names resolved by the query layer.
func (r *VersionRepo) ListSummaries(ctx context.Context, docID string) ([]model.DocumentVersionSummary, error) {
	sqlStr := `
		SELECT v.id, v.document_id, v.version, v.is_official, v.created_by, COALESCE(u.name, ''), v.ctime
		FROM document_versions v
		LEFT JOIN users u ON u.id = v.created_by
		WHERE v.document_id = ?
		ORDER BY v.version DESC`
	sqlStr, args := dbutil.Finalize(sqlStr, []interface{}{docID})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	versions := make([]model.DocumentVersionSummary, 0)
	for rows.Next() {
		var v model.DocumentVersionSummary
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Version, &v.IsOfficial, &v.CreatedBy, &v.CreatorName, &v.Ctime); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
