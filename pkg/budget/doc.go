// Package budget describes the SF-424A budget tables: their row and column
// layout, how cell values are read from either form data shape, how derived
// totals are computed, and how backend warnings become "Row R Column C"
// labels under the offending cell.
package budget
