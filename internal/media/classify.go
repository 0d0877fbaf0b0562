package media

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// MIMESVG is the detected content type of vector input, which the image
// pipeline special-cases.
const MIMESVG = "image/svg+xml"

// Family membership is a closed whitelist. Anything outside these lists is
// FamilyUnknown even if it is structurally valid media.
var (
	imageMIMEs = map[string]struct{}{
		"image/jpeg":    {},
		"image/png":     {},
		"image/gif":     {},
		"image/webp":    {},
		"image/bmp":     {},
		"image/tiff":    {},
		"image/svg+xml": {},
	}
	videoMIMEs = map[string]struct{}{
		"video/mp4":        {},
		"video/mpeg":       {},
		"video/quicktime":  {},
		"video/webm":       {},
		"video/x-msvideo":  {},
		"video/x-matroska": {},
		"video/x-flv":      {},
	}
	audioMIMEs = map[string]struct{}{
		"audio/mpeg":  {},
		"audio/wav":   {},
		"audio/x-wav": {},
		"audio/ogg":   {},
		"audio/flac":  {},
		"audio/aac":   {},
		"audio/mp4":   {},
	}
)

// Classify determines the media family of a file from its content. The
// filename extension is never consulted because user-supplied names are
// untrusted. An unmatched content type yields FamilyUnknown with a nil
// error; the error return is reserved for I/O failures.
func Classify(path string) (Family, string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return FamilyUnknown, "", fmt.Errorf("failed to sniff %s: %w", path, err)
	}

	mime := mtype.String()
	return FamilyForMIME(mime), mime, nil
}

// FamilyForMIME maps a detected MIME type onto a media family.
func FamilyForMIME(mime string) Family {
	if _, ok := imageMIMEs[mime]; ok {
		return FamilyImage
	}
	if _, ok := videoMIMEs[mime]; ok {
		return FamilyVideo
	}
	if _, ok := audioMIMEs[mime]; ok {
		return FamilyAudio
	}
	return FamilyUnknown
}

// IsVector reports whether the detected MIME type is vector input.
func IsVector(mime string) bool { return mime == MIMESVG }
