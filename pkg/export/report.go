// Package export renders a blood bank's ledgers and stock into
// downloadable files.
package export

// Report is a flat table destined for download. Column order is the
// render order in both formats, and every row must carry one cell per
// column.
type Report struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// AddRow appends one row. Short rows are padded with empty cells so the
// renderers never index past the end.
func (r *Report) AddRow(cells ...string) {
	for len(cells) < len(r.Columns) {
		cells = append(cells, "")
	}
	r.Rows = append(r.Rows, cells[:len(r.Columns)])
}
