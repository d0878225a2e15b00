// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mrz-scan/internal/observability"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ImagePreprocessor inspects photographed documents. It performs no OCR; its
// job is the capture metadata: resolution and exposure hints that explain why
// an upstream OCR pass produced noisy candidate lines.
type ImagePreprocessor struct {
	observer *observability.StandardObserver
}

var _ observability.Observable = (*ImagePreprocessor)(nil)

// NewImagePreprocessor creates a new image preprocessor
func NewImagePreprocessor() *ImagePreprocessor {
	return &ImagePreprocessor{}
}

// SetObserver sets the observability component
func (ip *ImagePreprocessor) SetObserver(observer *observability.StandardObserver) {
	ip.observer = observer
}

// GetName returns the name of this preprocessor
func (ip *ImagePreprocessor) GetName() string {
	return "Image Preprocessor"
}

// GetComponentName returns the component identifier
func (ip *ImagePreprocessor) GetComponentName() string {
	return "image_preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ip *ImagePreprocessor) GetSupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".tif", ".tiff"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ip *ImagePreprocessor) CanProcess(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supportedExt := range ip.GetSupportedExtensions() {
		if ext == supportedExt {
			return true
		}
	}
	return false
}

// hintWalker collects the EXIF tags relevant to OCR quality
type hintWalker struct {
	tags map[string]string
}

// relevantTags is the subset of EXIF fields that affect machine readability
// of the MRZ band in a photograph
var relevantTags = map[exif.FieldName]bool{
	exif.Model:            true,
	exif.DateTimeOriginal: true,
	exif.ISOSpeedRatings:  true,
	exif.ExposureTime:     true,
	exif.FNumber:          true,
	exif.Flash:            true,
	exif.PixelXDimension:  true,
	exif.PixelYDimension:  true,
	exif.XResolution:      true,
	exif.YResolution:      true,
	exif.Orientation:      true,
}

// Walk implements the exif Walker interface
func (w *hintWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag != nil && relevantTags[name] {
		w.tags[string(name)] = tag.String()
	}
	return nil
}

// Process extracts capture metadata from the image
func (ip *ImagePreprocessor) Process(filePath string) (*ExtractedDocument, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if ip.observer != nil {
		finishTiming = ip.observer.StartTiming(ip.GetComponentName(), "process_file", filePath)
		if ip.observer.DebugObserver != nil {
			finishStep = ip.observer.DebugObserver.StartStep(ip.GetComponentName(), "process_file", filePath)
		}
	}

	fail := func(err error) (*ExtractedDocument, error) {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, err.Error())
		}
		return &ExtractedDocument{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "image",
			Success:       false,
			Error:         err,
		}, err
	}

	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return fail(fmt.Errorf("error opening file: %w", err))
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return fail(fmt.Errorf("no EXIF data found: %w", err))
	}

	walker := &hintWalker{tags: make(map[string]string)}
	x.Walk(walker)

	result := &ExtractedDocument{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "Image",
		ProcessorType: "image",
		Success:       true,
		Metadata:      make(map[string]interface{}),
	}
	for k, v := range walker.tags {
		result.Metadata[k] = v
	}
	result.Hints = CaptureHints(walker.tags)

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"tag_count":  len(walker.tags),
			"hint_count": len(result.Hints),
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Extracted %d capture metadata tag(s), %d quality hint(s)", len(walker.tags), len(result.Hints)))
	}

	return result, nil
}

// CaptureHints derives human-readable quality warnings from EXIF tags. Each
// hint names a capture condition known to degrade OCR of the MRZ band.
func CaptureHints(tags map[string]string) []string {
	var hints []string

	if iso := parseExifInt(tags[string(exif.ISOSpeedRatings)]); iso >= 800 {
		hints = append(hints, fmt.Sprintf("high ISO (%d) suggests sensor noise", iso))
	}

	width := parseExifInt(tags[string(exif.PixelXDimension)])
	height := parseExifInt(tags[string(exif.PixelYDimension)])
	if width > 0 && height > 0 && width*height < 2_000_000 {
		hints = append(hints, fmt.Sprintf("low resolution (%dx%d) may blur small MRZ glyphs", width, height))
	}

	if orientation := parseExifInt(tags[string(exif.Orientation)]); orientation > 1 {
		hints = append(hints, "non-upright orientation; rotate before OCR")
	}

	return hints
}

// parseExifInt extracts the first integer from an EXIF tag string, which may
// be quoted or bracketed depending on the tag type
func parseExifInt(s string) int {
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			if err == nil {
				return n
			}
			start = -1
		}
	}
	return 0
}
