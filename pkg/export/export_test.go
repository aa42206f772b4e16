package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"enrollmentId", "semester"},
		Rows:    [][]string{{"e-1", "FALL"}, {"e-2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "enrollmentId,semester\ne-1,FALL\ne-2,\n", string(out))
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Dataset{Title: "roster", Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", r.ContentType())

	r, err = ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, "csv", r.Extension())

	_, err = ForFormat("xlsx")
	assert.Error(t, err)
}
