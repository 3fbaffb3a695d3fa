package model

const (
	DraftStatusInProgress      = "in_progress"
	DraftStatusPendingApproval = "pending_approval"
	DraftStatusApproved        = "approved"
	DraftStatusRejected        = "rejected"
)

// Draft is a private working copy branched from a specific official version.
// BaseVersionID always refers to a version of DocumentID.
type Draft struct {
	ID            string     `json:"id"`
	DocumentID    string     `json:"document_id"`
	BaseVersionID string     `json:"base_version_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Content       ContentRef `json:"content"`
	CreatedBy     string     `json:"created_by"`
	Ctime         int64      `json:"ctime"`
	Mtime         int64      `json:"mtime"`
}

type DraftDetail struct {
	Draft
	CreatorName   string `json:"creator_name"`
	DocumentTitle string `json:"document_title"`
}
