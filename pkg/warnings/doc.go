// Package warnings maps backend validation warnings, addressed by JSON path,
// onto the UI schema fields that display them.
package warnings
