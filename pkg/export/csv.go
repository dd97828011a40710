package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// RenderCSV encodes the report as CSV with the column names as the
// first record.
func RenderCSV(r Report) ([]byte, error) {
	if len(r.Columns) == 0 {
		return nil, fmt.Errorf("report has no columns")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(r.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(r.Rows); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}
	return buf.Bytes(), nil
}
