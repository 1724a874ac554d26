package printing

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func findChrome(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome or Chromium binary on PATH")
	return ""
}

func TestPDFRenderer_EmptyDocument(t *testing.T) {
	r := NewPDFRenderer(config.PrintingConfig{}, nil)
	defer r.Close()

	_, err := r.RenderPDF(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestPDFRenderer_RenderPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Chrome test in short mode")
	}
	chrome := findChrome(t)

	r := NewPDFRenderer(config.PrintingConfig{ChromePath: chrome, NoSandbox: true, Timeout: 30 * time.Second}, zaptest.NewLogger(t))
	defer r.Close()

	engine, err := NewTemplateEngine()
	require.NoError(t, err)
	html, err := engine.RenderInvoice(sampleInvoice())
	require.NoError(t, err)

	pdf, err := r.RenderPDF(context.Background(), html)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
