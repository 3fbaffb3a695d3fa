package model

const (
	DocumentStatusActive   = "active"
	DocumentStatusArchived = "archived"
)

type Document struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Classification string `json:"classification"`
	OwnerID        string `json:"owner_id"`
	Status         string `json:"status"`
	Ctime          int64  `json:"ctime"`
	Mtime          int64  `json:"mtime"`
}

// DocumentDetail is the read model returned by get/list endpoints: the
// document plus display fields resolved by the query layer.
type DocumentDetail struct {
	Document
	OwnerName       string `json:"owner_name"`
	OfficialVersion int    `json:"official_version"`
}

// ContentRef points at an opaque blob in the file store. The workflow never
// interprets the bytes behind it.
type ContentRef struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
}
