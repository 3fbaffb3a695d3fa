package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/dbutil"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
)

type ReportJobRepo struct {
	db dbutil.Queryer
}

func NewReportJobRepo(db *sql.DB) *ReportJobRepo {
	return &ReportJobRepo{db: db}
}

var reportJobColumns = []string{"id", "document_id", "requested_by", "status", "file_key", "error", "ctime", "mtime"}

func (r *ReportJobRepo) Create(ctx context.Context, job *model.ReportJob) error {
	data := map[string]interface{}{
		"id":           job.ID,
		"document_id":  job.DocumentID,
		"requested_by": job.RequestedBy,
		"status":       job.Status,
		"file_key":     job.FileKey,
		"error":        job.Error,
		"ctime":        job.Ctime,
		"mtime":        job.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("report_jobs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ReportJobRepo) GetByID(ctx context.Context, id string) (*model.ReportJob, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("report_jobs", where, reportJobColumns)
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
	var job model.ReportJob
	if err := rows.Scan(&job.ID, &job.DocumentID, &job.RequestedBy, &job.Status, &job.FileKey, &job.Error, &job.Ctime, &job.Mtime); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ReportJobRepo) UpdateStatus(ctx context.Context, id, status, fileKey, errMsg string, mtime int64) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{
		"status":   status,
		"file_key": fileKey,
		"error":    errMsg,
		"mtime":    mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("report_jobs", where, update)
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

// DeleteFinishedBefore removes done/failed jobs older than the cutoff and
// returns the file keys of removed artifacts so the caller can purge blobs.
func (r *ReportJobRepo) DeleteFinishedBefore(ctx context.Context, cutoff int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"DELETE FROM report_jobs WHERE status IN ('done', 'failed') AND mtime < $1 RETURNING file_key", cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys, rows.Err()
}
