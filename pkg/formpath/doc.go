// Package formpath converts between the three addressing notations used by
// the form engine:
//
//   - JSON Pointer into the form schema (`/properties/a/properties/b`)
//   - JSON Path as reported by backend validation (`$.a.b`, `$.a[0].b`)
//   - HTML-safe field names used for `name`/`id` attributes (`a--b`, `a[0]--b`)
//
// Slashes and dots are unsafe inside HTML attributes and collide with the
// array/object separators, hence the `--` delimiter. Array indices are kept as
// `name[idx]` immediately after the owning segment so they survive every
// conversion.
package formpath
