// Package uischema loads the layout trees that pair with form JSON Schemas.
// A UI schema is an ordered list of field, section and multiField nodes; the
// `type` discriminator is required and `definition` accepts either a single
// JSON pointer or a list. Files may be JSON or YAML.
package uischema
