package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	r := Report{Columns: []string{"Group", "Units"}}
	r.AddRow("A+", "4")
	r.AddRow("O-")

	out, err := RenderCSV(r)
	require.NoError(t, err)
	require.Equal(t, "Group,Units\nA+,4\nO-,\n", string(out))
}

func TestRenderCSVNoColumns(t *testing.T) {
	_, err := RenderCSV(Report{})
	require.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	r := Report{Title: "Stock", Columns: []string{"Group", "Units"}}
	r.AddRow("B+", "0")

	out, err := RenderPDF(r)
	require.NoError(t, err)
	require.True(t, len(out) > 4)
	require.Equal(t, "%PDF", string(out[:4]))
}
