package model

const (
	ReportStatusQueued  = "queued"
	ReportStatusRunning = "running"
	ReportStatusDone    = "done"
	ReportStatusFailed  = "failed"
)

// ReportJob tracks one document-history report generation request. The job
// row is the polling surface; the rendered artifact lives in the file store
// under FileKey once Status is done.
type ReportJob struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	RequestedBy string `json:"requested_by"`
	Status      string `json:"status"`
	FileKey     string `json:"file_key,omitempty"`
	Error       string `json:"error,omitempty"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}
