// Package widgets turns resolved form widgets into HTML.
//
// Three pieces live here:
//
//   - Resolver infers a widget type from a field schema when the UI schema
//     does not name one explicitly.
//   - Registry maps widget types to Renderer functions; NewDefaultRegistry
//     wires the embedded pongo2 templates for every built-in type,
//     including the six SF-424A budget sections.
//   - BuildProps and BuildBudgetTable derive the template views. Field
//     templates receive `widget` (Props) and `config`; budget templates
//     receive `table` (BudgetTable) and `config`.
//
// Themes override individual templates through ComponentData.Partials,
// keyed by `widgets.<name>` (for example `widgets.text` or
// `widgets.budget`).
package widgets
