package attachments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/goliatone/go-applyform/internal/httpclient"
)

// FileField is the multipart field carrying the uploaded file.
const FileField = "file_attachment"

// StatusError is returned for non-2xx API responses.
type StatusError = httpclient.StatusError

// HTTPClient talks to the attachment endpoints of the application API.
type HTTPClient struct {
	transport *httpclient.Client
}

// NewHTTPClient wraps a configured transport.
func NewHTTPClient(transport *httpclient.Client) *HTTPClient {
	return &HTTPClient{transport: transport}
}

type uploadResponse struct {
	Data struct {
		ApplicationAttachmentID string `json:"application_attachment_id"`
	} `json:"data"`
}

type listResponse struct {
	Data []Attachment `json:"data"`
}

// Upload posts the file as multipart form data and returns the new id.
func (c *HTTPClient) Upload(ctx context.Context, applicationID, fileName string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(FileField, fileName)
	if err != nil {
		return "", fmt.Errorf("attachments: create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", fmt.Errorf("attachments: read %q: %w", fileName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("attachments: close multipart body: %w", err)
	}

	var out uploadResponse
	err = c.transport.Do(ctx, httpclient.Request{
		Operation:   "upload_attachment",
		Method:      http.MethodPost,
		Path:        collectionPath(applicationID),
		ContentType: writer.FormDataContentType(),
		Body:        &buf,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("attachments: upload: %w", err)
	}
	if out.Data.ApplicationAttachmentID == "" {
		return "", fmt.Errorf("attachments: upload response carries no attachment id")
	}
	return out.Data.ApplicationAttachmentID, nil
}

// Delete removes an attachment.
func (c *HTTPClient) Delete(ctx context.Context, applicationID, attachmentID string) error {
	err := c.transport.Do(ctx, httpclient.Request{
		Operation: "delete_attachment",
		Method:    http.MethodDelete,
		Path:      collectionPath(applicationID) + "/" + url.PathEscape(attachmentID),
	}, nil)
	if err != nil {
		return fmt.Errorf("attachments: delete: %w", err)
	}
	return nil
}

// List returns the application's attachments.
func (c *HTTPClient) List(ctx context.Context, applicationID string) ([]Attachment, error) {
	var out listResponse
	err := c.transport.Do(ctx, httpclient.Request{
		Operation: "list_attachments",
		Method:    http.MethodGet,
		Path:      collectionPath(applicationID),
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("attachments: list: %w", err)
	}
	return out.Data, nil
}

func collectionPath(applicationID string) string {
	return "/applications/" + url.PathEscape(applicationID) + "/attachments"
}
