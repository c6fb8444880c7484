// Package formdata turns submitted HTML form values back into the nested
// JSON document the application API stores.
//
// Field names use the `--` delimited notation produced by formpath
// (`activity_line_items[0]--budget_summary--total_amount`). Shape strips
// framework bookkeeping keys, nests the names, coerces scalars and prunes
// empty structures; Reshape applies the same coercion and pruning to data
// that is already nested, so Reshape(Shape(v)) equals Shape(v).
package formdata
