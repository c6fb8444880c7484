// Package render defines the contract between the form pipeline and the
// output renderers: the Renderer interface and its Registry, per-request
// RenderOptions, hidden submission fields, form-level error mapping and the
// translated chrome strings every renderer shares.
package render
