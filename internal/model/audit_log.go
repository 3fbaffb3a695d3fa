package model

// Audit action tags. Purely additive; renaming one invalidates stored history.
const (
	AuditDocumentCreated      = "DOCUMENT_CREATED"
	AuditDocumentUpdated      = "DOCUMENT_UPDATED"
	AuditDocumentArchived     = "DOCUMENT_ARCHIVED"
	AuditDraftCreated         = "DRAFT_CREATED"
	AuditDraftUpdated         = "DRAFT_UPDATED"
	AuditDraftDeleted         = "DRAFT_DELETED"
	AuditMergeRequestCreated  = "MERGE_REQUEST_CREATED"
	AuditMergeRequestApproved = "MERGE_REQUEST_APPROVED"
	AuditMergeRequestRejected = "MERGE_REQUEST_REJECTED"
	AuditUserCreated          = "USER_CREATED"
	AuditUserRoleChanged      = "USER_ROLE_CHANGED"
	AuditUserDisabled         = "USER_DISABLED"
	AuditReportRequested      = "REPORT_REQUESTED"
)

// AuditLogEntry is an append-only fact. Entries are never updated or deleted.
type AuditLogEntry struct {
	ID             string `json:"id"`
	ActorID        string `json:"actor_id"`
	ActorName      string `json:"actor_name"`
	Action         string `json:"action"`
	DocumentID     string `json:"document_id,omitempty"`
	DraftID        string `json:"draft_id,omitempty"`
	MergeRequestID string `json:"merge_request_id,omitempty"`
	Detail         string `json:"detail,omitempty"`
	IP             string `json:"ip,omitempty"`
	UserAgent      string `json:"user_agent,omitempty"`
	Ctime          int64  `json:"ctime"`
}
