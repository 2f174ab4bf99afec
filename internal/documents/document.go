// Package documents implements the document domain for Redline.
// It provides types, data access, and business logic for contract and
// playbook upload, registration, metadata management, and blob storage
// integration. Uploaded documents are the "upload" source the analysis
// pipeline fetches clause text from.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document kinds.
const (
	KindContract = "contract"
	KindPlaybook = "playbook"
	KindRulebook = "rulebook"
)

// Document represents a registered document with its metadata and blob
// storage reference.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count"`
	StorageKey  string    `json:"storage_key"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new document.
// Data holds the raw file bytes. PageCount is optional and may be extracted
// by the caller via pdfcpu; nil values are stored as NULL.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Kind        string
	PageCount   *int
}
