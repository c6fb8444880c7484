// Package formtree resolves a UI schema against its form schema, the saved
// response and backend warnings into the ordered widget tree renderers
// consume.
//
// Top-level field nodes become widgets in place, sections become a single
// Fieldset widget wrapping their resolved children, and multiField nodes
// merge the values found at each of their constituent pointers. The output
// order is exactly the UI schema order. A structurally invalid node aborts
// the whole build with a *NodeError so callers can show a form-level error
// instead of partial markup.
package formtree
