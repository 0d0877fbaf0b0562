package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/mediaforge/mediaforge/internal/media"
)

// ImagingEngine is the raster image engine backed by the imaging library.
// Decoding through imaging drops EXIF and other ancillary blocks, so
// StripMetadata is inherently satisfied on every re-encode.
type ImagingEngine struct {
	logger *zap.Logger
}

func NewImagingEngine(logger *zap.Logger) *ImagingEngine {
	return &ImagingEngine{logger: logger}
}

func (e *ImagingEngine) ProcessImage(ctx context.Context, inputPath, outputPath string, cfg media.ImageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := imaging.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}

	processed := resizeImage(src, cfg)

	format := cfg.OutputFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(outputPath), ".")
	}

	if err := saveImage(processed, outputPath, format, cfg.Quality); err != nil {
		return err
	}

	e.logger.Info("image processed",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("format", format),
	)
	return nil
}

func resizeImage(src image.Image, cfg media.ImageConfig) image.Image {
	w, h := cfg.TargetWidth, cfg.TargetHeight
	if w == 0 && h == 0 {
		return src
	}

	if cfg.MaintainAspectRatio {
		if w > 0 && h > 0 {
			return imaging.Fit(src, w, h, imaging.Lanczos)
		}
		// A zero dimension already preserves aspect ratio in Resize.
		return imaging.Resize(src, w, h, imaging.Lanczos)
	}

	if w == 0 {
		w = src.Bounds().Dx()
	}
	if h == 0 {
		h = src.Bounds().Dy()
	}
	return imaging.Resize(src, w, h, imaging.Lanczos)
}

func saveImage(img image.Image, outputPath, format string, quality int) error {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("unsupported output format %q: %w", format, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	var opts []imaging.EncodeOption
	if f == imaging.JPEG && quality > 0 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}

	if err := imaging.Encode(out, img, f, opts...); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// ExtractMetadata reads the image header without decoding pixel data.
func (e *ImagingEngine) ExtractMetadata(path string) (map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	return map[string]interface{}{
		"width":  cfg.Width,
		"height": cfg.Height,
		"format": format,
	}, nil
}
