package attachments

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryClient keeps attachments in process. It backs mock mode, where no
// application API is reachable.
type MemoryClient struct {
	mu    sync.Mutex
	files map[string][]Attachment
	now   func() time.Time
}

// NewMemoryClient returns an empty store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{files: map[string][]Attachment{}, now: time.Now}
}

// Upload stores the file metadata; the content is read and discarded.
func (c *MemoryClient) Upload(ctx context.Context, applicationID, fileName string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	size, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", fmt.Errorf("attachments: read %q: %w", fileName, err)
	}
	now := c.now()
	att := Attachment{
		ApplicationAttachmentID: uuid.NewString(),
		FileName:                fileName,
		FileSizeBytes:           size,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	c.mu.Lock()
	c.files[applicationID] = append(c.files[applicationID], att)
	c.mu.Unlock()
	return att.ApplicationAttachmentID, nil
}

// Delete removes attachmentID, reporting ErrNotFound when it is unknown.
func (c *MemoryClient) Delete(ctx context.Context, applicationID, attachmentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.files[applicationID]
	idx := slices.IndexFunc(list, func(att Attachment) bool {
		return att.ApplicationAttachmentID == attachmentID
	})
	if idx < 0 {
		return ErrNotFound
	}
	c.files[applicationID] = slices.Delete(slices.Clone(list), idx, idx+1)
	return nil
}

// List returns a copy of the application's attachments.
func (c *MemoryClient) List(ctx context.Context, applicationID string) ([]Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.files[applicationID]), nil
}
