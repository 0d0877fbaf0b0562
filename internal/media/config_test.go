package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageConfigWithOverridesDoesNotMutateBase(t *testing.T) {
	base := ImageConfig{
		TargetWidth:         1200,
		Quality:             85,
		OutputFormat:        "jpg",
		MaintainAspectRatio: true,
	}

	derived := base.WithOverrides(map[string]interface{}{
		"quality":       60,
		"target_width":  800,
		"output_format": "webp",
	}).(ImageConfig)

	assert.Equal(t, 60, derived.Quality)
	assert.Equal(t, 800, derived.TargetWidth)
	assert.Equal(t, "webp", derived.OutputFormat)

	// The base stays untouched.
	assert.Equal(t, 85, base.Quality)
	assert.Equal(t, 1200, base.TargetWidth)
	assert.Equal(t, "jpg", base.OutputFormat)
}

func TestWithOverridesEmptyMapYieldsEqualConfig(t *testing.T) {
	base := VideoConfig{
		TargetWidth:  1920,
		TargetHeight: 1080,
		Codec:        "libx264",
		AudioCodec:   "aac",
		Bitrate:      5_000_000,
		Framerate:    30,
		OutputFormat: "mp4",
	}

	derived := base.WithOverrides(map[string]interface{}{})
	assert.Equal(t, base, derived)
}

func TestWithOverridesCoercesJSONNumbers(t *testing.T) {
	// Values decoded from JSON arrive as float64.
	derived := AudioConfig{}.WithOverrides(map[string]interface{}{
		"bitrate":     float64(192000),
		"sample_rate": float64(44100),
		"normalize":   true,
	}).(AudioConfig)

	assert.Equal(t, 192000, derived.Bitrate)
	assert.Equal(t, 44100, derived.SampleRate)
	assert.True(t, derived.Normalize)
}

func TestWithOverridesIgnoresUnknownKeysAndWrongTypes(t *testing.T) {
	base := ImageConfig{Quality: 85}
	derived := base.WithOverrides(map[string]interface{}{
		"quality":     "not a number",
		"no_such_key": 1,
	}).(ImageConfig)

	assert.Equal(t, base, derived)
}

func TestConfigFamilies(t *testing.T) {
	assert.Equal(t, FamilyImage, ImageConfig{}.Family())
	assert.Equal(t, FamilyVideo, VideoConfig{}.Family())
	assert.Equal(t, FamilyAudio, AudioConfig{}.Family())
	assert.Equal(t, FamilyGeneric, GenericConfig{}.Family())
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	cases := []Config{
		ImageConfig{TargetWidth: 300, Quality: 90, OutputFormat: "png"},
		VideoConfig{TargetWidth: 1280, Codec: "libx264", Bitrate: 2_500_000},
		AudioConfig{OutputFormat: "mp3", Bitrate: 128_000, Normalize: true},
		GenericConfig{},
	}

	for _, cfg := range cases {
		data, err := MarshalConfig(cfg)
		require.NoError(t, err)

		decoded, err := UnmarshalConfig(data)
		require.NoError(t, err)
		assert.Equal(t, cfg, decoded)
	}
}

func TestUnmarshalConfigEmptyYieldsGeneric(t *testing.T) {
	cfg, err := UnmarshalConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, GenericConfig{}, cfg)
}
