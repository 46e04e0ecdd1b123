// Package carrier validates carrier media files and estimates their
// payload capacity. It inspects paths and sizes only; it never decodes
// media.
package carrier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported carrier extensions by media class.
var (
	imageExtensions = map[string]struct{}{
		".png": {}, ".bmp": {}, ".tif": {}, ".tiff": {}, ".jpg": {}, ".jpeg": {},
	}
	audioExtensions = map[string]struct{}{
		".wav": {}, ".flac": {},
	}
	videoExtensions = map[string]struct{}{
		".mp4": {}, ".avi": {}, ".mkv": {}, ".mov": {},
	}
)

// Conservative capacity multipliers per media class.
const (
	imageCapacityMultiplier = 4
	audioCapacityMultiplier = 2
	videoCapacityMultiplier = 3

	// minCapacityBytes floors every estimate.
	minCapacityBytes = 1024
)

// Errors returned by validation and capacity estimation.
var (
	ErrNotFound    = errors.New("carrier file not found")
	ErrUnsupported = errors.New("unsupported carrier type")
)

// ValidationResult describes a validation outcome.
type ValidationResult struct {
	Valid   bool
	Message string
}

// SupportedExtensions returns every supported carrier extension, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(imageExtensions)+len(audioExtensions)+len(videoExtensions))
	for _, set := range []map[string]struct{}{imageExtensions, audioExtensions, videoExtensions} {
		for ext := range set {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

func normalizeExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func supported(ext string) bool {
	if _, ok := imageExtensions[ext]; ok {
		return true
	}
	if _, ok := audioExtensions[ext]; ok {
		return true
	}
	_, ok := videoExtensions[ext]
	return ok
}

// ValidatePath checks whether path refers to a supported carrier file.
func ValidatePath(path string) ValidationResult {
	if _, err := os.Stat(path); err != nil {
		return ValidationResult{Valid: false, Message: "file not found"}
	}

	ext := normalizeExtension(path)
	if !supported(ext) {
		if ext == "" {
			ext = "unknown"
		}
		return ValidationResult{Valid: false, Message: fmt.Sprintf("unsupported file type: %s", ext)}
	}

	return ValidationResult{Valid: true, Message: "OK"}
}

// EstimateCapacity returns a conservative payload capacity estimate for
// path, in bytes.
func EstimateCapacity(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	ext := normalizeExtension(path)
	if !supported(ext) {
		if ext == "" {
			ext = "unknown"
		}
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}

	var multiplier int64
	switch {
	case hasKey(imageExtensions, ext):
		multiplier = imageCapacityMultiplier
	case hasKey(audioExtensions, ext):
		multiplier = audioCapacityMultiplier
	default:
		multiplier = videoCapacityMultiplier
	}

	capacity := info.Size() * multiplier
	if capacity < minCapacityBytes {
		capacity = minCapacityBytes
	}
	return capacity, nil
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
