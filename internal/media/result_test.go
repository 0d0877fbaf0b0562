package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A result must never be successful with an error message, nor failed with an
// output path.
func assertResultInvariant(t *testing.T, r *Result) {
	t.Helper()
	if r.IsSuccess() {
		assert.Empty(t, r.ErrorMessage, "successful result carries an error message")
	} else {
		assert.Empty(t, r.OutputPath, "failed result carries an output path")
	}
}

func TestSucceed(t *testing.T) {
	r := Succeed("/out/a.jpg")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "/out/a.jpg", r.OutputPath)
	assert.Equal(t, []string{"/out/a.jpg"}, r.ProcessedFiles)
	assertResultInvariant(t, r)
}

func TestSucceedWithoutArtifact(t *testing.T) {
	r := Succeed("")
	assert.True(t, r.IsSuccess())
	assert.Empty(t, r.OutputPath)
	assert.Empty(t, r.ProcessedFiles)
	assertResultInvariant(t, r)
}

func TestFailure(t *testing.T) {
	r := Failure("engine exploded")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, "engine exploded", r.ErrorMessage)
	assertResultInvariant(t, r)
}

func TestWithMetaChains(t *testing.T) {
	r := Failure("nope").
		WithMeta("mime_type", "application/pdf").
		WithMeta("error_type", "*errors.errorString")

	assert.Equal(t, "application/pdf", r.Metadata["mime_type"])
	assert.Equal(t, "*errors.errorString", r.Metadata["error_type"])
	assertResultInvariant(t, r)
}
