package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-applyform/pkg/applications"
)

const fixture = "../../fixtures/forms/project-narrative.json"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRender(t *testing.T) {
	data := writeTemp(t, "data.json", `{"project_title":"River restoration"}`)
	var out bytes.Buffer

	err := runRender(context.Background(), []string{"-form", fixture, "-data", data, "-variant", "high-contrast"}, &out)
	require.NoError(t, err)
	html := out.String()
	assert.Contains(t, html, `value="River restoration"`)
	assert.Contains(t, html, `data-theme-variant="high-contrast"`)
	assert.Contains(t, html, "Point of contact")
}

func TestRender_Print(t *testing.T) {
	var out bytes.Buffer
	err := runRender(context.Background(), []string{"-form", fixture, "-print"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "apply-form--print")
	assert.NotContains(t, out.String(), `name="apply-form-button"`)
}

func TestRender_MissingForm(t *testing.T) {
	err := runRender(context.Background(), []string{"-form", filepath.Join(t.TempDir(), "nope.json")}, &bytes.Buffer{})
	assert.ErrorIs(t, err, applications.ErrFormNotFound)

	err = runRender(context.Background(), nil, &bytes.Buffer{})
	assert.EqualError(t, err, "-form is required")
}

func TestValidate(t *testing.T) {
	data := writeTemp(t, "data.json", `{
		"project_title": "River restoration",
		"application_type": "New",
		"application_info": {"additional_funding": true},
		"contact": {"name": "Ada", "email": "ada@example.gov"}
	}`)
	var out bytes.Buffer

	err := runValidate([]string{"-form", fixture, "-data", data, "-strict"}, &out)
	var exit exitError
	require.True(t, errors.As(err, &exit), "expected exit error, got %v", err)
	assert.Equal(t, exitError(1), exit)

	var result applications.SaveResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, applications.StatusInProgress, result.ApplicationFormStatus)

	messages := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		messages = append(messages, w.Message)
	}
	assert.Contains(t, messages, "'narrative_attachment' is a required property")
	assert.Contains(t, messages, "'additional_funding_explanation' is a required property")
}

func TestValidate_Complete(t *testing.T) {
	data := writeTemp(t, "data.json", `{
		"project_title": "River restoration",
		"application_type": "New",
		"contact": {"name": "Ada", "email": "ada@example.gov"},
		"narrative_attachment": "0b4c9e1e-4a55-4d8e-9a43-4b8a1f0d2c11"
	}`)
	var out bytes.Buffer
	require.NoError(t, runValidate([]string{"-form", fixture, "-data", data, "-strict"}, &out))
	assert.Contains(t, out.String(), `"application_form_status": "complete"`)
}

func TestShape(t *testing.T) {
	body := "project_title=01234&contact--name=Ada&regions=West&application_info--additional_funding=false&application_info--additional_funding=true&apply-form-button=save"
	var out bytes.Buffer

	err := runShape(context.Background(), []string{"-form", fixture}, strings.NewReader(body), &out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"project_title": "01234",
		"contact": {"name": "Ada"},
		"regions": ["West"],
		"application_info": {"additional_funding": true}
	}`, out.String())
}

func TestShape_ConflictingKeys(t *testing.T) {
	err := runShape(context.Background(), nil, strings.NewReader("contact=x&contact--name=y"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestLint(t *testing.T) {
	broken := writeTemp(t, "broken.json", `{
		"form_id": "broken",
		"form_json_schema": {"type": "object", "properties": {"a": {"type": "string", "allOf": []}}},
		"form_ui_schema": [{"type": "field", "definition": "/properties/missing"}]
	}`)
	var out bytes.Buffer

	err := runLint(context.Background(), []string{fixture, broken}, &out)
	assert.Equal(t, exitError(1), err)
	report := out.String()
	assert.Contains(t, report, broken+": ")
	assert.NotContains(t, report, fixture)

	out.Reset()
	require.NoError(t, runLint(context.Background(), []string{fixture}, &out))
	assert.Empty(t, out.String())
}
