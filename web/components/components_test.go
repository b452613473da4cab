package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	assert.Equal(t, VariantError, ParseVariant("destructive"))
	assert.Equal(t, VariantError, ParseVariant("error"))
	assert.Equal(t, VariantWarning, ParseVariant("warning"))
	assert.Equal(t, VariantInfo, ParseVariant("info"))
	assert.Equal(t, VariantSuccess, ParseVariant(""))
	assert.Equal(t, VariantSuccess, ParseVariant("party"))
}

func TestToast(t *testing.T) {
	var buf bytes.Buffer
	err := Toast(ToastProps{
		Title:       "Export failed",
		Description: "size <120>",
		Variant:     VariantError,
		Duration:    2000,
		Dismissible: true,
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, `data-duration="2000"`)
	assert.Contains(t, html, "bg-red-50")
	assert.Contains(t, html, "size &lt;120&gt;")
	assert.Contains(t, html, "data-toast-dismiss")
}

func TestToastDefaults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Toast(ToastProps{Title: "Saved"}).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, `role="status"`)
	assert.Contains(t, html, `data-variant="success"`)
	assert.NotContains(t, html, "data-duration")
	assert.NotContains(t, html, "data-toast-dismiss")
}

func TestButtonClassOverrides(t *testing.T) {
	cls := ButtonClass(ButtonPrimary, "px-6", "bg-blue-600")
	assert.Contains(t, cls, "px-6")
	assert.Contains(t, cls, "bg-blue-600")
	assert.NotContains(t, cls, "px-3")
	assert.NotContains(t, cls, "bg-gray-900")
}
