// Package model defines the resolved form tree consumed by renderers. A Form
// holds an ordered list of Widgets built from the UI schema; section nodes
// become Fieldset widgets with children, every other node is a leaf whose
// Type selects the renderer. Backend validation warnings travel as
// FormValidationWarning values keyed by JSON path and are localised into
// MappedWarning entries carrying the HTML field name they belong to.
package model
