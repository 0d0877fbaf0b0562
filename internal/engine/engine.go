// Package engine defines the capability contracts of the external codec
// engines and their local implementations. The orchestrator depends on the
// interfaces only; implementations are supplied at composition time.
package engine

import (
	"context"

	"github.com/mediaforge/mediaforge/internal/media"
)

// ImageEngine is the raster image processing capability.
type ImageEngine interface {
	ProcessImage(ctx context.Context, inputPath, outputPath string, cfg media.ImageConfig) error
	ExtractMetadata(path string) (map[string]interface{}, error)
}

// AVEngine is the audiovisual transcoding capability.
type AVEngine interface {
	ProcessVideo(ctx context.Context, inputPath, outputPath string, cfg media.VideoConfig) error
	ProcessAudio(ctx context.Context, inputPath, outputPath string, cfg media.AudioConfig) error
	// ExtractFrame writes a single frame taken offsetSeconds into the video.
	// Zero width/height keep the source resolution.
	ExtractFrame(ctx context.Context, inputPath, outputPath string, offsetSeconds float64, width, height int) error
	ExtractMetadata(path string) (map[string]interface{}, error)
}

// VectorRasterizer renders vector input to a raster format at the requested
// dimensions. Zero width/height use the document's own size.
type VectorRasterizer interface {
	Rasterize(ctx context.Context, inputPath, outputPath string, width, height int, format string, quality int) error
}
