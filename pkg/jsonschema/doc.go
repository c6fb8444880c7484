// Package jsonschema prepares grant form schemas for rendering. Process
// expands local `$ref`s, lifts if/then allOf conditionals out of `properties`
// into ConditionalRules and merges the remaining allOf blocks, so every field
// definition can be read directly at its `/properties/...` pointer.
// RequiredPaths computes the unconditionally required field paths used to
// flag inputs.
package jsonschema
