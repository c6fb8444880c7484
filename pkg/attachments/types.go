package attachments

import (
	"context"
	"io"
	"time"
)

// Attachment is an uploaded file as reported by the application API.
type Attachment struct {
	ApplicationAttachmentID string    `json:"application_attachment_id"`
	FileName                string    `json:"file_name"`
	MimeType                string    `json:"mime_type,omitempty"`
	FileSizeBytes           int64     `json:"file_size_bytes"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
	DownloadPath            string    `json:"download_path,omitempty"`
}

// Status is the state of a pending upload.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusUploaded  Status = "uploaded"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Upload is a read-only view of a pending upload.
type Upload struct {
	ID       string `json:"id"`
	Field    string `json:"field"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	Status   Status `json:"status"`
	Err      error  `json:"-"`
}

// UploadRequest describes a file chosen for an attachment field. Multiple
// appends the new id to the field's list instead of replacing its value.
type UploadRequest struct {
	Field    string
	Multiple bool
	FileName string
	Size     int64
	Body     io.Reader
}

// PendingDelete is the attachment awaiting delete confirmation.
type PendingDelete struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Deleting bool   `json:"deleting"`
}

// Client is the subset of the application API the manager talks to.
type Client interface {
	Upload(ctx context.Context, applicationID, fileName string, body io.Reader) (string, error)
	Delete(ctx context.Context, applicationID, attachmentID string) error
	List(ctx context.Context, applicationID string) ([]Attachment, error)
}

// Observer receives one call per finished attachment operation, e.g.
// ("upload", "success") or ("delete", "failure").
type Observer interface {
	ObserveAttachment(operation, outcome string)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(operation, outcome string)

// ObserveAttachment calls fn.
func (fn ObserverFunc) ObserveAttachment(operation, outcome string) {
	fn(operation, outcome)
}
