// Package validation checks application responses against a form's JSON
// Schema and reports failures in the same shape the backend uses for its
// warnings, so they flow through the warning mapper unchanged.
package validation
