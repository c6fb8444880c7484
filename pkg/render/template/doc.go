// Package template defines the renderer-agnostic template contract used by
// widgets and the form document. The gotemplate subpackage implements it on
// pongo2.
package template
