package media

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

// Classification is content-based: a PNG named file.txt is still an image.
func TestClassifyIgnoresExtension(t *testing.T) {
	path := writeFile(t, "file.txt", pngBytes(t))

	family, mime, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, FamilyImage, family)
	assert.Equal(t, "image/png", mime)
}

func TestClassifyMP4(t *testing.T) {
	// Minimal ISO base media file header.
	header := []byte{
		0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
		'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
		'i', 's', 'o', 'm', 'm', 'p', '4', '1',
	}
	path := writeFile(t, "clip.bin", header)

	family, mime, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, FamilyVideo, family)
	assert.Equal(t, "video/mp4", mime)
}

func TestClassifyMP3(t *testing.T) {
	data := append([]byte("ID3"), make([]byte, 16)...)
	path := writeFile(t, "track.dat", data)

	family, mime, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, FamilyAudio, family)
	assert.Equal(t, "audio/mpeg", mime)
}

func TestClassifySVG(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"></svg>`)
	path := writeFile(t, "logo.svg", svg)

	family, mime, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, FamilyImage, family)
	assert.True(t, IsVector(mime))
}

// Content outside the whitelists is Unknown, not an error.
func TestClassifyUnknown(t *testing.T) {
	path := writeFile(t, "notes.bin", []byte("just some plain text"))

	family, _, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, FamilyUnknown, family)
}

func TestClassifyMissingFileErrors(t *testing.T) {
	family, _, err := Classify(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
	assert.Equal(t, FamilyUnknown, family)
}
