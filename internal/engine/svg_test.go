package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="40" height="20"><rect width="40" height="20" fill="#ff0000"/></svg>`

func writeTestSVG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.svg")
	require.NoError(t, os.WriteFile(path, []byte(testSVG), 0644))
	return path
}

func TestSVGRasterizeDocumentSize(t *testing.T) {
	r := NewSVGRasterizer(zaptest.NewLogger(t))
	input := writeTestSVG(t)
	output := filepath.Join(filepath.Dir(input), "out.png")

	require.NoError(t, r.Rasterize(context.Background(), input, output, 0, 0, "png", 90))

	w, h, format := decodeSize(t, output)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)
	assert.Equal(t, "png", format)
}

func TestSVGRasterizeScalesProportionally(t *testing.T) {
	r := NewSVGRasterizer(zaptest.NewLogger(t))
	input := writeTestSVG(t)
	output := filepath.Join(filepath.Dir(input), "out.png")

	// Only width given: height follows the document's aspect ratio.
	require.NoError(t, r.Rasterize(context.Background(), input, output, 80, 0, "png", 90))

	w, h, _ := decodeSize(t, output)
	assert.Equal(t, 80, w)
	assert.Equal(t, 40, h)
}

func TestSVGRasterizeToJPEG(t *testing.T) {
	r := NewSVGRasterizer(zaptest.NewLogger(t))
	input := writeTestSVG(t)
	output := filepath.Join(filepath.Dir(input), "out.jpg")

	require.NoError(t, r.Rasterize(context.Background(), input, output, 40, 20, "jpg", 85))

	_, _, format := decodeSize(t, output)
	assert.Equal(t, "jpeg", format)
}

func TestSVGRasterizeInvalidInput(t *testing.T) {
	r := NewSVGRasterizer(zaptest.NewLogger(t))
	tmp := t.TempDir()
	input := filepath.Join(tmp, "broken.svg")
	require.NoError(t, os.WriteFile(input, []byte("not svg at all"), 0644))

	err := r.Rasterize(context.Background(), input, filepath.Join(tmp, "out.png"), 0, 0, "png", 90)
	assert.Error(t, err)
}
