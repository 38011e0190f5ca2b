package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	r := NewLocalRenderer(t.TempDir(), "")

	html, err := r.renderHTML(templateData{
		FullName:       "Maria Silva",
		CourseName:     "Go Avançado",
		CourseDuration: "40 horas",
		Date:           "10/03/2024",
		CertificateID:  "20240315-093045-ab12cd34",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Maria Silva")
	assert.Contains(t, html, "Go Avançado")
	assert.Contains(t, html, "40 horas")
	assert.Contains(t, html, "10/03/2024")
	assert.Contains(t, html, "20240315-093045-ab12cd34")
}

func TestRenderHTMLWithoutDuration(t *testing.T) {
	r := NewLocalRenderer(t.TempDir(), "")

	html, err := r.renderHTML(templateData{
		FullName:   "João Souza",
		CourseName: "Introdução a Go",
		Date:       "01/02/2024",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "()")
}

func TestRenderErrorUnwraps(t *testing.T) {
	inner := assert.AnError
	err := &RenderError{Stage: "pdf export", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "pdf export")
}
