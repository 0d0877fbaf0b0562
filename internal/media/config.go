// Package media defines the core value types of the processing pipeline:
// media families, per-family processing configurations and the uniform
// processing result. Configurations are immutable values; derivation always
// returns a fresh copy.
package media

import (
	"encoding/json"
	"fmt"
)

// Family identifies which processing pipeline handles a file.
type Family string

const (
	FamilyImage   Family = "image"
	FamilyVideo   Family = "video"
	FamilyAudio   Family = "audio"
	FamilyGeneric Family = "generic"
	// FamilyUnknown is returned by classification when file content does not
	// match any registered family. It is a normal value, not an error.
	FamilyUnknown Family = "unknown"
)

// Config is the shared read-only surface over the per-family configuration
// variants. Dispatch happens on Family(); the concrete variant is recovered
// with a single type switch at the processing boundary.
type Config interface {
	Family() Family
	// Fields returns a flat snapshot of the configuration values, keyed the
	// same way WithOverrides expects them.
	Fields() map[string]interface{}
	// WithOverrides returns a new configuration with the given fields
	// replaced. The receiver is never modified.
	WithOverrides(overrides map[string]interface{}) Config
}

// ImageConfig describes a raster image transformation. Zero dimensions mean
// "keep the source dimension".
type ImageConfig struct {
	TargetWidth         int    `json:"targetWidth,omitempty"`
	TargetHeight        int    `json:"targetHeight,omitempty"`
	Quality             int    `json:"quality"` // 0-100
	OutputFormat        string `json:"outputFormat,omitempty"`
	MaintainAspectRatio bool   `json:"maintainAspectRatio"`
	StripMetadata       bool   `json:"stripMetadata"`
}

// DefaultImageConfig returns the fallback image configuration used when a
// caller hands the image pipeline a mismatched config variant.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		Quality:             85,
		MaintainAspectRatio: true,
		StripMetadata:       true,
	}
}

func (c ImageConfig) Family() Family { return FamilyImage }

func (c ImageConfig) Fields() map[string]interface{} {
	return map[string]interface{}{
		"target_width":          c.TargetWidth,
		"target_height":         c.TargetHeight,
		"quality":               c.Quality,
		"output_format":         c.OutputFormat,
		"maintain_aspect_ratio": c.MaintainAspectRatio,
		"strip_metadata":        c.StripMetadata,
	}
}

func (c ImageConfig) WithOverrides(overrides map[string]interface{}) Config {
	out := c
	for key, value := range overrides {
		switch key {
		case "target_width":
			out.TargetWidth = asInt(value, out.TargetWidth)
		case "target_height":
			out.TargetHeight = asInt(value, out.TargetHeight)
		case "quality":
			out.Quality = asInt(value, out.Quality)
		case "output_format":
			out.OutputFormat = asString(value, out.OutputFormat)
		case "maintain_aspect_ratio":
			out.MaintainAspectRatio = asBool(value, out.MaintainAspectRatio)
		case "strip_metadata":
			out.StripMetadata = asBool(value, out.StripMetadata)
		}
	}
	return out
}

// VideoConfig describes a video transcode. Zero values mean "engine default".
type VideoConfig struct {
	TargetWidth  int     `json:"targetWidth,omitempty"`
	TargetHeight int     `json:"targetHeight,omitempty"`
	Codec        string  `json:"codec,omitempty"`
	AudioCodec   string  `json:"audioCodec,omitempty"`
	Bitrate      int     `json:"bitrate,omitempty"` // bits/sec
	Framerate    float64 `json:"framerate,omitempty"`
	Duration     float64 `json:"duration,omitempty"` // seconds, 0 = full length
	OutputFormat string  `json:"outputFormat,omitempty"`
}

// DefaultVideoConfig returns the fallback video configuration.
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		Codec:        "libx264",
		AudioCodec:   "aac",
		OutputFormat: "mp4",
	}
}

func (c VideoConfig) Family() Family { return FamilyVideo }

func (c VideoConfig) Fields() map[string]interface{} {
	return map[string]interface{}{
		"target_width":  c.TargetWidth,
		"target_height": c.TargetHeight,
		"codec":         c.Codec,
		"audio_codec":   c.AudioCodec,
		"bitrate":       c.Bitrate,
		"framerate":     c.Framerate,
		"duration":      c.Duration,
		"output_format": c.OutputFormat,
	}
}

func (c VideoConfig) WithOverrides(overrides map[string]interface{}) Config {
	out := c
	for key, value := range overrides {
		switch key {
		case "target_width":
			out.TargetWidth = asInt(value, out.TargetWidth)
		case "target_height":
			out.TargetHeight = asInt(value, out.TargetHeight)
		case "codec":
			out.Codec = asString(value, out.Codec)
		case "audio_codec":
			out.AudioCodec = asString(value, out.AudioCodec)
		case "bitrate":
			out.Bitrate = asInt(value, out.Bitrate)
		case "framerate":
			out.Framerate = asFloat(value, out.Framerate)
		case "duration":
			out.Duration = asFloat(value, out.Duration)
		case "output_format":
			out.OutputFormat = asString(value, out.OutputFormat)
		}
	}
	return out
}

// AudioConfig describes an audio transcode.
type AudioConfig struct {
	OutputFormat string `json:"outputFormat,omitempty"`
	Bitrate      int    `json:"bitrate,omitempty"` // bits/sec
	SampleRate   int    `json:"sampleRate,omitempty"`
	Channels     int    `json:"channels,omitempty"`
	Normalize    bool   `json:"normalize"`
}

// DefaultAudioConfig returns the fallback audio configuration.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		OutputFormat: "mp3",
		Bitrate:      192000,
	}
}

func (c AudioConfig) Family() Family { return FamilyAudio }

func (c AudioConfig) Fields() map[string]interface{} {
	return map[string]interface{}{
		"output_format": c.OutputFormat,
		"bitrate":       c.Bitrate,
		"sample_rate":   c.SampleRate,
		"channels":      c.Channels,
		"normalize":     c.Normalize,
	}
}

func (c AudioConfig) WithOverrides(overrides map[string]interface{}) Config {
	out := c
	for key, value := range overrides {
		switch key {
		case "output_format":
			out.OutputFormat = asString(value, out.OutputFormat)
		case "bitrate":
			out.Bitrate = asInt(value, out.Bitrate)
		case "sample_rate":
			out.SampleRate = asInt(value, out.SampleRate)
		case "channels":
			out.Channels = asInt(value, out.Channels)
		case "normalize":
			out.Normalize = asBool(value, out.Normalize)
		}
	}
	return out
}

// GenericConfig is the fallback variant for callers that have no
// family-specific settings. The processing pipelines coerce it to the
// matching family default.
type GenericConfig struct{}

func (GenericConfig) Family() Family { return FamilyGeneric }

func (GenericConfig) Fields() map[string]interface{} { return map[string]interface{}{} }

func (c GenericConfig) WithOverrides(map[string]interface{}) Config { return c }

// configEnvelope is the wire form of a Config inside a queued job message.
type configEnvelope struct {
	Family Family       `json:"family"`
	Image  *ImageConfig `json:"image,omitempty"`
	Video  *VideoConfig `json:"video,omitempty"`
	Audio  *AudioConfig `json:"audio,omitempty"`
}

// MarshalConfig serializes a Config for transport inside a job message.
func MarshalConfig(c Config) ([]byte, error) {
	env := configEnvelope{Family: FamilyGeneric}
	switch v := c.(type) {
	case ImageConfig:
		env.Family = FamilyImage
		env.Image = &v
	case VideoConfig:
		env.Family = FamilyVideo
		env.Video = &v
	case AudioConfig:
		env.Family = FamilyAudio
		env.Audio = &v
	case GenericConfig, nil:
		// generic envelope
	default:
		return nil, fmt.Errorf("unsupported config type %T", c)
	}
	return json.Marshal(env)
}

// UnmarshalConfig restores a Config from its wire form. A missing or generic
// envelope yields GenericConfig.
func UnmarshalConfig(data []byte) (Config, error) {
	if len(data) == 0 {
		return GenericConfig{}, nil
	}
	var env configEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config envelope: %w", err)
	}
	switch env.Family {
	case FamilyImage:
		if env.Image != nil {
			return *env.Image, nil
		}
		return DefaultImageConfig(), nil
	case FamilyVideo:
		if env.Video != nil {
			return *env.Video, nil
		}
		return DefaultVideoConfig(), nil
	case FamilyAudio:
		if env.Audio != nil {
			return *env.Audio, nil
		}
		return DefaultAudioConfig(), nil
	default:
		return GenericConfig{}, nil
	}
}

// Override values arrive from JSON as float64 and from Go callers as native
// types, so the coercion helpers accept both.
func asInt(v interface{}, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}

func asFloat(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}

func asString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func asBool(v interface{}, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}
