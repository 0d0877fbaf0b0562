package engine

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

// SVGRasterizer renders SVG documents to raster formats with a pure-Go
// scanline rasterizer.
type SVGRasterizer struct {
	logger *zap.Logger
}

func NewSVGRasterizer(logger *zap.Logger) *SVGRasterizer {
	return &SVGRasterizer{logger: logger}
}

func (r *SVGRasterizer) Rasterize(ctx context.Context, inputPath, outputPath string, width, height int, format string, quality int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	icon, err := oksvg.ReadIcon(inputPath, oksvg.WarnErrorMode)
	if err != nil {
		return fmt.Errorf("failed to parse SVG: %w", err)
	}

	width, height = rasterSize(icon.ViewBox.W, icon.ViewBox.H, width, height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("SVG %s has no usable dimensions", inputPath)
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(outputPath), ".")
	}
	if err := saveImage(img, outputPath, format, quality); err != nil {
		return err
	}

	r.logger.Info("svg rasterized",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}

// rasterSize resolves the requested dimensions against the document's
// viewbox: a single zero dimension scales proportionally, both zero use the
// viewbox as-is.
func rasterSize(vbW, vbH float64, width, height int) (int, int) {
	switch {
	case width > 0 && height > 0:
		return width, height
	case width > 0 && vbW > 0:
		return width, int(float64(width) * vbH / vbW)
	case height > 0 && vbH > 0:
		return int(float64(height) * vbW / vbH), height
	default:
		return int(vbW), int(vbH)
	}
}
