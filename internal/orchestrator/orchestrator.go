// Package orchestrator is the processing façade: it validates input,
// classifies content, selects the engine and config, and assembles a uniform
// result. Engine faults never cross this boundary as errors; they come back
// inside failure results.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mediaforge/mediaforge/internal/engine"
	"github.com/mediaforge/mediaforge/internal/media"
)

// Queuer is the async hand-off consumed by Process when async is requested.
// The jobs service implements it.
type Queuer interface {
	QueueProcessing(ctx context.Context, inputPath, outputPath string, cfg media.Config, delay time.Duration) *media.Result
}

// Orchestrator dispatches processing requests to the engine matching the
// input's media family.
type Orchestrator struct {
	images engine.ImageEngine
	av     engine.AVEngine
	vector engine.VectorRasterizer
	queuer Queuer
	logger *zap.Logger
}

func New(images engine.ImageEngine, av engine.AVEngine, vector engine.VectorRasterizer, queuer Queuer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		images: images,
		av:     av,
		vector: vector,
		queuer: queuer,
		logger: logger,
	}
}

// Process runs the full pipeline for one input file. With async set it hands
// the request to the job queue without touching the file: the worker
// re-validates existence when the job actually runs.
func (o *Orchestrator) Process(ctx context.Context, inputPath, outputPath string, cfg media.Config, async bool) *media.Result {
	if async {
		if o.queuer == nil {
			return media.Failure("async processing is not configured")
		}
		return o.queuer.QueueProcessing(ctx, inputPath, outputPath, cfg, 0)
	}

	if _, err := os.Stat(inputPath); err != nil {
		return media.Failure(fmt.Sprintf("input file not found: %s", inputPath))
	}

	start := time.Now()
	family, mime, err := media.Classify(inputPath)
	if err != nil {
		return o.classifyFailure(inputPath, err)
	}

	var result *media.Result
	switch family {
	case media.FamilyImage:
		result = o.processImage(ctx, inputPath, outputPath, cfg, mime)
	case media.FamilyVideo:
		result = o.ProcessVideo(ctx, inputPath, outputPath, cfg)
	case media.FamilyAudio:
		result = o.ProcessAudio(ctx, inputPath, outputPath, cfg)
	default:
		result = media.Failure(fmt.Sprintf("unsupported media type: %s", mime)).
			WithMeta("mime_type", mime)
	}

	result.ProcessingTime = time.Since(start).Seconds()
	return result
}

// ProcessImage transforms a raster or vector image. A mismatched config
// variant is silently normalized to the image default. Vector input is
// rasterized when the target format differs from SVG; otherwise it goes
// through the generic raster pipeline.
func (o *Orchestrator) ProcessImage(ctx context.Context, inputPath, outputPath string, cfg media.Config) *media.Result {
	_, mime, err := media.Classify(inputPath)
	if err != nil {
		return o.classifyFailure(inputPath, err)
	}
	return o.processImage(ctx, inputPath, outputPath, cfg, mime)
}

func (o *Orchestrator) processImage(ctx context.Context, inputPath, outputPath string, cfg media.Config, mime string) *media.Result {
	imgCfg, ok := cfg.(media.ImageConfig)
	if !ok {
		imgCfg = media.DefaultImageConfig()
	}

	if media.IsVector(mime) && imgCfg.OutputFormat != "" && !strings.EqualFold(imgCfg.OutputFormat, "svg") {
		err := o.vector.Rasterize(ctx, inputPath, outputPath, imgCfg.TargetWidth, imgCfg.TargetHeight, imgCfg.OutputFormat, imgCfg.Quality)
		return o.engineOutcome("vector", outputPath, err)
	}

	err := o.images.ProcessImage(ctx, inputPath, outputPath, imgCfg)
	return o.engineOutcome("image", outputPath, err)
}

// ProcessVideo transcodes video input, normalizing a mismatched config
// variant to the video default.
func (o *Orchestrator) ProcessVideo(ctx context.Context, inputPath, outputPath string, cfg media.Config) *media.Result {
	vidCfg, ok := cfg.(media.VideoConfig)
	if !ok {
		vidCfg = media.DefaultVideoConfig()
	}
	err := o.av.ProcessVideo(ctx, inputPath, outputPath, vidCfg)
	return o.engineOutcome("video", outputPath, err)
}

// ProcessAudio transcodes audio input, normalizing a mismatched config
// variant to the audio default.
func (o *Orchestrator) ProcessAudio(ctx context.Context, inputPath, outputPath string, cfg media.Config) *media.Result {
	audCfg, ok := cfg.(media.AudioConfig)
	if !ok {
		audCfg = media.DefaultAudioConfig()
	}
	err := o.av.ProcessAudio(ctx, inputPath, outputPath, audCfg)
	return o.engineOutcome("audio", outputPath, err)
}

// videoThumbnailOffset is where the frame for video thumbnails is taken,
// past any initial black frames.
const videoThumbnailOffset = 1.0

// GenerateThumbnails produces one artifact per requested size. The batch is
// best effort: a failed size is recorded and processing continues, and the
// operation only reports overall failure when at least one size was requested
// and none succeeded. An empty size list succeeds with zero artifacts.
func (o *Orchestrator) GenerateThumbnails(ctx context.Context, inputPath string, sizes []int, format string, quality int) *media.Result {
	if format == "" {
		format = "jpg"
	}
	if quality <= 0 {
		quality = 80
	}

	if _, err := os.Stat(inputPath); err != nil {
		return media.Failure(fmt.Sprintf("input file not found: %s", inputPath))
	}

	start := time.Now()
	family, mime, err := media.Classify(inputPath)
	if err != nil {
		return o.classifyFailure(inputPath, err)
	}

	thumbnails := make(map[int]string)
	errs := []string{}
	var files []string

	for _, size := range sizes {
		outputPath := thumbnailPath(inputPath, size, format)

		var genErr error
		switch family {
		case media.FamilyImage:
			if media.IsVector(mime) {
				genErr = o.vector.Rasterize(ctx, inputPath, outputPath, size, size, format, quality)
			} else {
				genErr = o.images.ProcessImage(ctx, inputPath, outputPath, media.ImageConfig{
					TargetWidth:         size,
					TargetHeight:        size,
					Quality:             quality,
					OutputFormat:        format,
					MaintainAspectRatio: true,
					StripMetadata:       true,
				})
			}
		case media.FamilyVideo:
			genErr = o.av.ExtractFrame(ctx, inputPath, outputPath, videoThumbnailOffset, size, size)
		default:
			errs = append(errs, fmt.Sprintf("no thumbnail strategy for media type %s (size %d)", mime, size))
			continue
		}

		if genErr != nil {
			errs = append(errs, fmt.Sprintf("size %d: %v", size, genErr))
			o.logger.Warn("thumbnail generation failed for size",
				zap.String("input", inputPath),
				zap.Int("size", size),
				zap.Error(genErr),
			)
			continue
		}
		thumbnails[size] = outputPath
		files = append(files, outputPath)
	}

	var result *media.Result
	if len(sizes) > 0 && len(thumbnails) == 0 {
		result = media.Failure("thumbnail generation failed for all sizes")
	} else {
		result = media.Succeed("").WithFiles(files)
	}
	result.ProcessingTime = time.Since(start).Seconds()
	return result.
		WithMeta("thumbnails", thumbnails).
		WithMeta("errors", errs).
		WithMeta("generated_count", len(thumbnails))
}

func thumbnailPath(inputPath string, size int, format string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), fmt.Sprintf("%s_thumb_%d.%s", base, size, format))
}

// ExtractMetadata returns filesystem facts merged with family-specific engine
// metadata. It is advisory: any fault is reported inside the map under
// "error" and never aborts the caller.
func (o *Orchestrator) ExtractMetadata(filePath string) map[string]interface{} {
	meta := map[string]interface{}{"path": filePath}

	info, err := os.Stat(filePath)
	if err != nil {
		meta["error"] = err.Error()
		return meta
	}
	meta["size_bytes"] = info.Size()
	meta["modified_at"] = info.ModTime()

	family, mime, err := media.Classify(filePath)
	if err != nil {
		meta["error"] = err.Error()
		return meta
	}
	meta["mime_type"] = mime
	meta["family"] = string(family)

	var engineMeta map[string]interface{}
	switch family {
	case media.FamilyImage:
		engineMeta, err = o.images.ExtractMetadata(filePath)
	case media.FamilyVideo, media.FamilyAudio:
		engineMeta, err = o.av.ExtractMetadata(filePath)
	default:
		return meta
	}
	if err != nil {
		meta["error"] = err.Error()
		return meta
	}
	for k, v := range engineMeta {
		meta[k] = v
	}
	return meta
}

// ConvertFormat builds a minimal family-appropriate config from options and
// dispatches through the matching pipeline. Images default to quality 85 and
// audio to 192 kbit/s when options do not say otherwise.
func (o *Orchestrator) ConvertFormat(ctx context.Context, inputPath, outputPath, targetFormat string, options map[string]interface{}) *media.Result {
	if _, err := os.Stat(inputPath); err != nil {
		return media.Failure(fmt.Sprintf("input file not found: %s", inputPath))
	}

	start := time.Now()
	family, mime, err := media.Classify(inputPath)
	if err != nil {
		return o.classifyFailure(inputPath, err)
	}

	var result *media.Result
	switch family {
	case media.FamilyImage:
		cfg := media.DefaultImageConfig().WithOverrides(options).(media.ImageConfig)
		cfg.OutputFormat = targetFormat
		result = o.processImage(ctx, inputPath, outputPath, cfg, mime)
	case media.FamilyVideo:
		cfg := media.VideoConfig{}.WithOverrides(options).(media.VideoConfig)
		cfg.OutputFormat = targetFormat
		result = o.ProcessVideo(ctx, inputPath, outputPath, cfg)
	case media.FamilyAudio:
		cfg := media.DefaultAudioConfig().WithOverrides(options).(media.AudioConfig)
		cfg.OutputFormat = targetFormat
		result = o.ProcessAudio(ctx, inputPath, outputPath, cfg)
	default:
		result = media.Failure(fmt.Sprintf("unsupported media type for conversion: %s", mime)).
			WithMeta("mime_type", mime)
	}

	result.ProcessingTime = time.Since(start).Seconds()
	return result
}

// engineOutcome converts an engine-level fault into a failure result carrying
// the fault's message and type, or a success result naming the artifact.
func (o *Orchestrator) engineOutcome(engineName, outputPath string, err error) *media.Result {
	if err != nil {
		return media.Failure(err.Error()).
			WithMeta("engine", engineName).
			WithMeta("error_type", fmt.Sprintf("%T", err))
	}
	return media.Succeed(outputPath).WithMeta("engine", engineName)
}

func (o *Orchestrator) classifyFailure(inputPath string, err error) *media.Result {
	return media.Failure(fmt.Sprintf("failed to classify %s: %v", inputPath, err)).
		WithMeta("error_type", fmt.Sprintf("%T", err))
}
