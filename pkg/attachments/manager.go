package attachments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-applyform/internal/logger"
)

var (
	// ErrBusy is returned when deleting an attachment whose field still has
	// an upload in flight.
	ErrBusy = errors.New("attachments: field has an upload in progress")
	// ErrNotUploading is returned by Cancel for uploads that already settled.
	ErrNotUploading = errors.New("attachments: upload is not in progress")
	// ErrCancelled is reported to waiters of a cancelled upload.
	ErrCancelled = errors.New("attachments: upload cancelled")
	// ErrUnknownUpload is returned for upload ids the manager never issued.
	ErrUnknownUpload = errors.New("attachments: unknown upload")
	// ErrNotFound is returned for attachment ids missing from the list.
	ErrNotFound = errors.New("attachments: attachment not found")
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("attachments: no delete pending confirmation")
	// ErrMissingField is returned when an upload names no form field.
	ErrMissingField = errors.New("attachments: upload requires a field name")
)

// Option customises a Manager.
type Option func(*Manager)

// WithAttachments seeds the shared attachment list.
func WithAttachments(list []Attachment) Option {
	return func(m *Manager) {
		m.attachments = slices.Clone(list)
	}
}

// WithFieldValues seeds the attachment ids already bound to form fields.
// Values are either an id string or a list of ids.
func WithFieldValues(values map[string]any) Option {
	return func(m *Manager) {
		for field, value := range values {
			if ids := idList(value); len(ids) > 0 {
				m.values[field] = value
			}
		}
	}
}

// WithLogger sets the logger used for refresh failures.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver receives operation outcomes, typically for metrics.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// WithIDGenerator replaces the temporary upload id source.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) {
		if fn != nil {
			m.now = fn
		}
	}
}

type upload struct {
	Upload
	multiple bool
	cancel   context.CancelFunc
}

// Manager coordinates attachment state for one application. It is safe for
// concurrent use.
type Manager struct {
	mu sync.Mutex

	applicationID string
	client        Client
	logger        logger.Logger
	observer      Observer
	newID         func() string
	now           func() time.Time

	attachments []Attachment
	uploads     []*upload
	values      map[string]any
	pending     *PendingDelete
}

// NewManager creates a manager for applicationID.
func NewManager(client Client, applicationID string, opts ...Option) *Manager {
	m := &Manager{
		applicationID: applicationID,
		client:        client,
		logger:        logger.NewNoOpLogger(),
		newID:         uuid.NewString,
		now:           time.Now,
		values:        map[string]any{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Pending tracks one upload started with StartUpload.
type Pending struct {
	ID   string
	done chan struct{}
	id   string
	err  error
}

// Done is closed when the upload settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the upload settles and returns the attachment id.
// Cancelled uploads report ErrCancelled.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.id, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// StartUpload lists a placeholder for the file and sends it to the API in
// the background. On success the placeholder is dropped, the returned id is
// bound to the field and the attachment list is refreshed. On failure the
// placeholder is marked failed and the field keeps its previous value.
func (m *Manager) StartUpload(ctx context.Context, req UploadRequest) (*Pending, error) {
	if req.Field == "" {
		return nil, ErrMissingField
	}

	uploadCtx, cancel := context.WithCancel(ctx)
	entry := &upload{
		Upload: Upload{
			ID:       m.newID(),
			Field:    req.Field,
			FileName: req.FileName,
			Size:     req.Size,
			Status:   StatusUploading,
		},
		multiple: req.Multiple,
		cancel:   cancel,
	}

	m.mu.Lock()
	m.uploads = append([]*upload{entry}, m.uploads...)
	m.mu.Unlock()

	pending := &Pending{ID: entry.ID, done: make(chan struct{})}
	go func() {
		defer close(pending.done)
		defer cancel()
		id, err := m.client.Upload(uploadCtx, m.applicationID, req.FileName, req.Body)
		pending.id, pending.err = m.finishUpload(ctx, entry, id, err)
	}()
	return pending, nil
}

func (m *Manager) finishUpload(ctx context.Context, entry *upload, id string, uploadErr error) (string, error) {
	m.mu.Lock()
	if entry.Status == StatusCancelled {
		m.mu.Unlock()
		m.observe("upload", "cancelled")
		return "", ErrCancelled
	}
	// A failed upload never touches the field: an empty field stays empty and
	// a replacement keeps the file it already had.
	if uploadErr != nil {
		entry.Status = StatusFailed
		entry.Err = uploadErr
		m.mu.Unlock()
		m.observe("upload", "failure")
		return "", fmt.Errorf("attachments: upload %q: %w", entry.FileName, uploadErr)
	}

	entry.Status = StatusUploaded
	m.removeUpload(entry.ID)
	m.bind(entry.Field, id, entry.multiple)
	m.mu.Unlock()
	m.observe("upload", "success")

	if err := m.Refresh(ctx); err != nil {
		m.logger.WithError(err).Warn("attachment list refresh failed after upload", map[string]any{
			"application_id": m.applicationID,
			"attachment_id":  id,
		})
		now := m.now()
		m.mu.Lock()
		if _, ok := m.find(id); !ok {
			m.attachments = append(m.attachments, Attachment{
				ApplicationAttachmentID: id,
				FileName:                entry.FileName,
				FileSizeBytes:           entry.Size,
				CreatedAt:               now,
				UpdatedAt:               now,
			})
		}
		m.mu.Unlock()
	}
	return id, nil
}

// Cancel aborts an in-flight upload and removes its placeholder. A response
// arriving afterwards is ignored.
func (m *Manager) Cancel(uploadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.uploads {
		if entry.ID != uploadID {
			continue
		}
		if entry.Status != StatusUploading {
			return ErrNotUploading
		}
		entry.Status = StatusCancelled
		entry.cancel()
		m.removeUpload(uploadID)
		return nil
	}
	return ErrUnknownUpload
}

// Dismiss removes a failed upload from the list.
func (m *Manager) Dismiss(uploadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.uploads {
		if entry.ID == uploadID {
			if entry.Status == StatusUploading {
				return ErrBusy
			}
			m.removeUpload(uploadID)
			return nil
		}
	}
	return ErrUnknownUpload
}

// RequestDelete records id as awaiting confirmation.
func (m *Manager) RequestDelete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	att, ok := m.find(id)
	if !ok {
		return ErrNotFound
	}
	if m.uploadingFor(id) {
		return ErrBusy
	}
	m.pending = &PendingDelete{ID: id, FileName: att.FileName}
	return nil
}

// CancelDelete drops the pending confirmation.
func (m *Manager) CancelDelete() {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
}

// PendingDelete returns the attachment awaiting confirmation.
func (m *Manager) PendingDelete() (PendingDelete, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return PendingDelete{}, false
	}
	return *m.pending, true
}

// ConfirmDelete deletes the pending attachment through the API. On success
// the attachment leaves the list and every field referencing it is
// cleared. On failure the pending marker is cleared and the attachment
// stays listed.
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	if m.pending == nil {
		m.mu.Unlock()
		return ErrNoPendingDelete
	}
	if m.pending.Deleting {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.uploadingFor(m.pending.ID) {
		m.mu.Unlock()
		return ErrBusy
	}
	m.pending.Deleting = true
	id := m.pending.ID
	m.mu.Unlock()

	err := m.client.Delete(ctx, m.applicationID, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	if err != nil {
		m.observe("delete", "failure")
		return fmt.Errorf("attachments: delete %s: %w", id, err)
	}
	m.attachments = slices.DeleteFunc(m.attachments, func(att Attachment) bool {
		return att.ApplicationAttachmentID == id
	})
	for field := range m.values {
		m.unbind(field, id)
	}
	m.observe("delete", "success")
	return nil
}

// Detach clears id from field without calling the API. It is how a field
// drops a reference to a file that is no longer in the attachment list.
func (m *Manager) Detach(field, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbind(field, id)
}

// Refresh reloads the attachment list from the API.
func (m *Manager) Refresh(ctx context.Context) error {
	list, err := m.client.List(ctx, m.applicationID)
	if err != nil {
		return fmt.Errorf("attachments: list: %w", err)
	}
	m.mu.Lock()
	m.attachments = slices.Clone(list)
	m.mu.Unlock()
	return nil
}

// Attachments returns a copy of the shared list.
func (m *Manager) Attachments() []Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.attachments)
}

// Uploads returns the pending, failed and in-flight uploads, newest first.
func (m *Manager) Uploads() []Upload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Upload, len(m.uploads))
	for idx, entry := range m.uploads {
		out[idx] = entry.Upload
	}
	return out
}

// Value returns the attachment id or ids bound to field.
func (m *Manager) Value(field string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[field]
	if list, isList := value.([]any); isList {
		return slices.Clone(list), ok
	}
	return value, ok
}

// Values returns a copy of every field binding.
func (m *Manager) Values() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.values))
	for field, value := range m.values {
		if list, isList := value.([]any); isList {
			value = slices.Clone(list)
		}
		out[field] = value
	}
	return out
}

// FileName resolves an attachment id to its file name.
func (m *Manager) FileName(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.find(id)
	if !ok {
		return "", false
	}
	return att.FileName, true
}

func (m *Manager) find(id string) (Attachment, bool) {
	for _, att := range m.attachments {
		if att.ApplicationAttachmentID == id {
			return att, true
		}
	}
	return Attachment{}, false
}

func (m *Manager) removeUpload(uploadID string) {
	m.uploads = slices.DeleteFunc(m.uploads, func(entry *upload) bool {
		return entry.ID == uploadID
	})
}

// uploadingFor reports whether a field bound to id has an upload in flight.
func (m *Manager) uploadingFor(id string) bool {
	for _, entry := range m.uploads {
		if entry.Status != StatusUploading {
			continue
		}
		if slices.Contains(idList(m.values[entry.Field]), id) {
			return true
		}
	}
	return false
}

func (m *Manager) bind(field, id string, multiple bool) {
	if !multiple {
		m.values[field] = id
		return
	}
	list, _ := m.values[field].([]any)
	m.values[field] = append(slices.Clone(list), id)
}

func (m *Manager) unbind(field, id string) {
	switch value := m.values[field].(type) {
	case string:
		if value == id {
			delete(m.values, field)
		}
	case []any:
		kept := slices.DeleteFunc(slices.Clone(value), func(item any) bool {
			return item == id
		})
		if len(kept) == 0 {
			delete(m.values, field)
			return
		}
		m.values[field] = kept
	}
}

func (m *Manager) observe(operation, outcome string) {
	if m.observer != nil {
		m.observer.ObserveAttachment(operation, outcome)
	}
}

func idList(value any) []string {
	switch typed := value.(type) {
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if id, ok := item.(string); ok && id != "" {
				out = append(out, id)
			}
		}
		return out
	case []string:
		return slices.Clone(typed)
	}
	return nil
}
