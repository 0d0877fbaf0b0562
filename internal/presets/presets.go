// Package presets holds the named configuration bundles per media family.
// The catalogs are fixed map literals built at init and never mutated;
// derivation returns fresh copies.
package presets

import (
	"sort"

	"github.com/mediaforge/mediaforge/internal/media"
)

var imagePresets = map[string]media.ImageConfig{
	"thumbnail": {
		TargetWidth:         150,
		TargetHeight:        150,
		Quality:             80,
		OutputFormat:        "jpg",
		MaintainAspectRatio: true,
		StripMetadata:       true,
	},
	"web_optimized": {
		TargetWidth:         1200,
		Quality:             85,
		OutputFormat:        "jpg",
		MaintainAspectRatio: true,
		StripMetadata:       true,
	},
	"high_quality": {
		Quality:             95,
		OutputFormat:        "png",
		MaintainAspectRatio: true,
	},
}

var videoPresets = map[string]media.VideoConfig{
	"web_hd": {
		TargetWidth:  1920,
		TargetHeight: 1080,
		Codec:        "libx264",
		AudioCodec:   "aac",
		Bitrate:      5_000_000,
		Framerate:    30,
		OutputFormat: "mp4",
	},
	"web_sd": {
		TargetWidth:  1280,
		TargetHeight: 720,
		Codec:        "libx264",
		AudioCodec:   "aac",
		Bitrate:      2_500_000,
		Framerate:    30,
		OutputFormat: "mp4",
	},
	"mobile": {
		TargetWidth:  854,
		TargetHeight: 480,
		Codec:        "libx264",
		AudioCodec:   "aac",
		Bitrate:      1_000_000,
		Framerate:    24,
		OutputFormat: "mp4",
	},
}

var audioPresets = map[string]media.AudioConfig{
	"music_high": {
		OutputFormat: "mp3",
		Bitrate:      320_000,
		SampleRate:   44100,
		Channels:     2,
	},
	"podcast": {
		OutputFormat: "mp3",
		Bitrate:      128_000,
		SampleRate:   44100,
		Channels:     2,
		Normalize:    true,
	},
	"voice": {
		OutputFormat: "mp3",
		Bitrate:      64_000,
		SampleRate:   22050,
		Channels:     1,
		Normalize:    true,
	},
}

// List returns the preset names registered for a family, sorted for stable
// output.
func List(family media.Family) []string {
	var names []string
	switch family {
	case media.FamilyImage:
		for name := range imagePresets {
			names = append(names, name)
		}
	case media.FamilyVideo:
		for name := range videoPresets {
			names = append(names, name)
		}
	case media.FamilyAudio:
		for name := range audioPresets {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Get fetches a preset by family and name. The second return is false when
// no such preset exists.
func Get(family media.Family, name string) (media.Config, bool) {
	switch family {
	case media.FamilyImage:
		if cfg, ok := imagePresets[name]; ok {
			return cfg, true
		}
	case media.FamilyVideo:
		if cfg, ok := videoPresets[name]; ok {
			return cfg, true
		}
	case media.FamilyAudio:
		if cfg, ok := audioPresets[name]; ok {
			return cfg, true
		}
	}
	return nil, false
}

// DeriveCustom builds a new config from a base preset plus overrides. The
// catalog entry itself is never modified.
func DeriveCustom(family media.Family, baseName string, overrides map[string]interface{}) (media.Config, bool) {
	base, ok := Get(family, baseName)
	if !ok {
		return nil, false
	}
	return base.WithOverrides(overrides), true
}
