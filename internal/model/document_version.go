package model

// DocumentVersion is an immutable snapshot of a document's content. Rows are
// never updated after insert except for flipping IsOfficial during promotion.
type DocumentVersion struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	Version    int        `json:"version"`
	Content    ContentRef `json:"content"`
	IsOfficial bool       `json:"is_official"`
	CreatedBy  string     `json:"created_by"`
	Ctime      int64      `json:"ctime"`
}

// DocumentVersionSummary omits the content reference for listings.
type DocumentVersionSummary struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	Version     int    `json:"version"`
	IsOfficial  bool   `json:"is_official"`
	CreatedBy   string `json:"created_by"`
	CreatorName string `json:"creator_name"`
	Ctime       int64  `json:"ctime"`
}
