package models

import "time"

// ContentFormat identifies how a document version's content is rendered
type ContentFormat string

const (
	FormatMarkdown ContentFormat = "md"
	FormatHTML     ContentFormat = "html"
	FormatJSON     ContentFormat = "json"
	FormatXML      ContentFormat = "xml"
)

// Document has at most one active version. Only the active version may
// carry rendered PDF/DOCX payloads.
type Document struct {
	ID              int64     `json:"id"`
	DocKey          string    `json:"doc_key"`
	DocName         string    `json:"doc_name"`
	ActiveVersionID *int64    `json:"active_version_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// ActiveVersionNumber is populated on listing joins only.
	ActiveVersionNumber *int `json:"active_version_number,omitempty"`
}

// DocumentVersion holds versioned content plus optional rendered
// payloads.
type DocumentVersion struct {
	ID            int64         `json:"id"`
	DocumentID    int64         `json:"documents_id"`
	VersionNumber int           `json:"version_number"`
	Content       string        `json:"file_content"`
	ContentFormat ContentFormat `json:"file_content_format"`
	PDFData       []byte        `json:"-"`
	DOCXData      []byte        `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
