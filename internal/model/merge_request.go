package model

const (
	MergeStatusPending  = "pending"
	MergeStatusApproved = "approved"
	MergeStatusRejected = "rejected"
)

// MergeRequest is a review ticket asking the approver to promote a draft into
// the next official version. DocumentID is denormalized from the draft at
// submit time so approval can lock the document row directly.
type MergeRequest struct {
	ID              string `json:"id"`
	DraftID         string `json:"draft_id"`
	DocumentID      string `json:"document_id"`
	ApproverID      string `json:"approver_id"`
	Summary         string `json:"summary"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	ApprovedAt      int64  `json:"approved_at,omitempty"`
	RejectedAt      int64  `json:"rejected_at,omitempty"`
	CreatedBy       string `json:"created_by"`
	Ctime           int64  `json:"ctime"`
	Mtime           int64  `json:"mtime"`
}

type MergeRequestDetail struct {
	MergeRequest
	DraftName     string `json:"draft_name"`
	DocumentTitle string `json:"document_title"`
	CreatorName   string `json:"creator_name"`
	ApproverName  string `json:"approver_name"`
}
