package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mediaforge/mediaforge/internal/media"
)

// FFmpegEngine is the audiovisual engine backed by the ffmpeg and ffprobe
// binaries.
type FFmpegEngine struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

// NewFFmpegEngine verifies the ffmpeg installation up front so that a missing
// binary fails at startup rather than on the first job.
func NewFFmpegEngine(logger *zap.Logger) (*FFmpegEngine, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &FFmpegEngine{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}, nil
}

func (e *FFmpegEngine) ProcessVideo(ctx context.Context, inputPath, outputPath string, cfg media.VideoConfig) error {
	args := []string{"-i", inputPath}

	if cfg.TargetWidth > 0 || cfg.TargetHeight > 0 {
		// -2 lets ffmpeg pick an even value that preserves aspect ratio.
		w, h := "-2", "-2"
		if cfg.TargetWidth > 0 {
			w = strconv.Itoa(cfg.TargetWidth)
		}
		if cfg.TargetHeight > 0 {
			h = strconv.Itoa(cfg.TargetHeight)
		}
		args = append(args, "-vf", fmt.Sprintf("scale=%s:%s", w, h))
	}
	if cfg.Codec != "" {
		args = append(args, "-c:v", cfg.Codec)
	}
	if cfg.AudioCodec != "" {
		args = append(args, "-c:a", cfg.AudioCodec)
	}
	if cfg.Bitrate > 0 {
		args = append(args, "-b:v", strconv.Itoa(cfg.Bitrate))
	}
	if cfg.Framerate > 0 {
		args = append(args, "-r", strconv.FormatFloat(cfg.Framerate, 'f', -1, 64))
	}
	if cfg.Duration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", cfg.Duration))
	}
	args = append(args, "-y", outputPath)

	return e.run(ctx, "video transcode", args)
}

func (e *FFmpegEngine) ProcessAudio(ctx context.Context, inputPath, outputPath string, cfg media.AudioConfig) error {
	args := []string{"-i", inputPath, "-vn"}

	if cfg.Bitrate > 0 {
		args = append(args, "-b:a", strconv.Itoa(cfg.Bitrate))
	}
	if cfg.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(cfg.SampleRate))
	}
	if cfg.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(cfg.Channels))
	}
	if cfg.Normalize {
		args = append(args, "-af", "loudnorm")
	}
	args = append(args, "-y", outputPath)

	return e.run(ctx, "audio transcode", args)
}

// ExtractFrame writes a single frame taken offsetSeconds into the video.
func (e *FFmpegEngine) ExtractFrame(ctx context.Context, inputPath, outputPath string, offsetSeconds float64, width, height int) error {
	args := []string{
		"-ss", fmt.Sprintf("%.2f", offsetSeconds),
		"-i", inputPath,
		"-vframes", "1",
		"-q:v", "2",
	}
	if width > 0 || height > 0 {
		w, h := "-2", "-2"
		if width > 0 {
			w = strconv.Itoa(width)
		}
		if height > 0 {
			h = strconv.Itoa(height)
		}
		args = append(args, "-vf", fmt.Sprintf("scale=%s:%s", w, h))
	}
	args = append(args, "-y", outputPath)

	return e.run(ctx, "frame extraction", args)
}

func (e *FFmpegEngine) run(ctx context.Context, op string, args []string) error {
	outputPath := args[len(args)-1]
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		e.logger.Error("ffmpeg failed",
			zap.String("operation", op),
			zap.Strings("args", args),
			zap.ByteString("output", tail(output, 512)),
		)
		return fmt.Errorf("%s failed: %w", op, err)
	}

	e.logger.Info("ffmpeg completed", zap.String("operation", op), zap.String("output", outputPath))
	return nil
}

// tail keeps the last n bytes of ffmpeg's chatter, where the actual error is.
func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}

// ExtractMetadata probes the container and stream headers with ffprobe.
func (e *FFmpegEngine) ExtractMetadata(path string) (map[string]interface{}, error) {
	cmd := exec.Command(e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			RFrameRate string `json:"r_frame_rate"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
		Format struct {
			Duration   string `json:"duration"`
			BitRate    string `json:"bit_rate"`
			FormatName string `json:"format_name"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe JSON: %w", err)
	}

	metadata := make(map[string]interface{})
	metadata["format"] = probe.Format.FormatName
	if probe.Format.Duration != "" {
		if duration, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			metadata["duration"] = duration
		}
	}
	if probe.Format.BitRate != "" {
		if bitrate, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
			metadata["bitrate"] = bitrate
		}
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "video" {
			metadata["width"] = stream.Width
			metadata["height"] = stream.Height
			metadata["codec"] = stream.CodecName
			if fps, ok := parseFrameRate(stream.RFrameRate); ok {
				metadata["fps"] = fps
			}
			break
		}
	}
	for _, stream := range probe.Streams {
		if stream.CodecType == "audio" {
			metadata["audio_codec"] = stream.CodecName
			if stream.SampleRate != "" {
				if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
					metadata["sample_rate"] = rate
				}
			}
			if stream.Channels > 0 {
				metadata["channels"] = stream.Channels
			}
			break
		}
	}

	return metadata, nil
}

// parseFrameRate parses ffprobe's rational frame rate ("30/1", "30000/1001").
func parseFrameRate(rate string) (float64, bool) {
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}
