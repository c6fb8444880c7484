package applications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-applyform/internal/httpclient"
)

// ErrFormNotFound is returned when no form exists for the requested id.
var ErrFormNotFound = errors.New("applications: form not found")

// FormFetcher loads form definitions by id.
type FormFetcher interface {
	Form(ctx context.Context, formID string) (Form, error)
}

// HTTPFetcher reads forms from `GET /forms/{formID}`.
type HTTPFetcher struct {
	transport *httpclient.Client
}

// NewHTTPFetcher wraps a configured transport.
func NewHTTPFetcher(transport *httpclient.Client) *HTTPFetcher {
	return &HTTPFetcher{transport: transport}
}

// Form fetches formID.
func (f *HTTPFetcher) Form(ctx context.Context, formID string) (Form, error) {
	var out envelope[Form]
	err := f.transport.Do(ctx, httpclient.Request{
		Operation: "get_form",
		Method:    http.MethodGet,
		Path:      "/forms/" + url.PathEscape(formID),
	}, &out)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return Form{}, fmt.Errorf("%w: %s", ErrFormNotFound, formID)
		}
		return Form{}, fmt.Errorf("applications: fetch form %s: %w", formID, err)
	}
	if out.Data.FormID == "" {
		out.Data.FormID = formID
	}
	return out.Data, nil
}

// FixtureFetcher serves forms from `<formID>.json`, `.yaml` or `.yml` files.
// It backs mock mode and tests.
type FixtureFetcher struct {
	fsys fs.FS
}

// NewFixtureFetcher reads fixtures from fsys.
func NewFixtureFetcher(fsys fs.FS) *FixtureFetcher {
	return &FixtureFetcher{fsys: fsys}
}

var fixtureExtensions = []string{".json", ".yaml", ".yml"}

// Form loads the fixture for formID.
func (f *FixtureFetcher) Form(ctx context.Context, formID string) (Form, error) {
	if err := ctx.Err(); err != nil {
		return Form{}, err
	}
	if formID == "" || strings.ContainsAny(formID, `/\`) || strings.Contains(formID, "..") {
		return Form{}, fmt.Errorf("%w: %q", ErrFormNotFound, formID)
	}

	for _, ext := range fixtureExtensions {
		name := path.Clean(formID + ext)
		data, err := fs.ReadFile(f.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Form{}, fmt.Errorf("applications: read fixture %s: %w", name, err)
		}
		form, err := decodeFixture(data, ext)
		if err != nil {
			return Form{}, fmt.Errorf("applications: decode fixture %s: %w", name, err)
		}
		if form.FormID == "" {
			form.FormID = formID
		}
		return form, nil
	}
	return Form{}, fmt.Errorf("%w: %s", ErrFormNotFound, formID)
}

// decodeFixture accepts the API payload shape, with or without the `data`
// envelope.
func decodeFixture(data []byte, ext string) (Form, error) {
	if ext != ".json" {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Form{}, err
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return Form{}, err
		}
		data = converted
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Form{}, err
	}
	if inner, ok := probe["data"]; ok {
		data = inner
	}
	var form Form
	if err := json.Unmarshal(data, &form); err != nil {
		return Form{}, err
	}
	return form, nil
}
