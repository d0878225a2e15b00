// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"mrz-scan/internal/observability"
)

// PlainTextPreprocessor handles plain text files: OCR dumps, scanner exports
// and hand-entered MRZ lines all arrive as text
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

var _ observability.Observable = (*PlainTextPreprocessor)(nil)

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetComponentName returns the component identifier
func (ptp *PlainTextPreprocessor) GetComponentName() string {
	return "plaintext_preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".txt", ".text", ".log", ".mrz", ".ocr", ".csv", ".tsv"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))

	for _, supportedExt := range ptp.GetSupportedExtensions() {
		if ext == supportedExt {
			return true
		}
	}

	// For files without extension, do a quick content check
	if ext == "" {
		return ptp.isTextFile(filePath)
	}

	return false
}

// Process extracts MRZ candidate lines from the file
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ExtractedDocument, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming(ptp.GetComponentName(), "process_file", filePath)
		if ptp.observer.DebugObserver != nil {
			finishStep = ptp.observer.DebugObserver.StartStep(ptp.GetComponentName(), "process_file", filePath)
		}
	}

	content, err := ptp.readTextFile(filePath)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, fmt.Sprintf("Failed to read text file: %v", err))
		}
		return &ExtractedDocument{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "plaintext",
			Success:       false,
			Error:         err,
		}, err
	}

	candidates := ExtractCandidates(content)
	lineCount := strings.Count(content, "\n") + 1

	result := &ExtractedDocument{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          content,
		Candidates:    candidates,
		Format:        "Plain Text",
		LineCount:     lineCount,
		ProcessorType: "plaintext",
		Success:       true,
		Metadata:      make(map[string]interface{}),
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"line_count":      lineCount,
			"candidate_count": len(candidates),
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Found %d MRZ candidate group(s) in %d lines", len(candidates), lineCount))
	}

	return result, nil
}

// readTextFile reads the content of a text file with proper encoding handling
func (ptp *PlainTextPreprocessor) readTextFile(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}

	// OCR dumps are small; anything huge is not an MRZ source
	const maxSize = 10 * 1024 * 1024 // 10MB
	if fileInfo.Size() > maxSize {
		return "", fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), maxSize)
	}

	fileContent, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	content := string(fileContent)

	// Validate UTF-8 encoding
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}

	return content, nil
}

// isTextFile performs a quick check to determine if a file contains text
func (ptp *PlainTextPreprocessor) isTextFile(filePath string) bool {
	cleanPath := filepath.Clean(filePath)
	file, err := os.Open(cleanPath)
	if err != nil {
		return false
	}
	defer file.Close()

	// Read first 512 bytes to check for binary content
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return false
	}

	buffer = buffer[:n]

	// Check for null bytes (common in binary files)
	for _, b := range buffer {
		if b == 0 {
			return false
		}
	}

	// Count printable characters
	printableCount := 0
	for _, b := range buffer {
		if (b >= 32 && b <= 126) || b == 9 || b == 10 || b == 13 {
			printableCount++
		}
	}

	// Consider it text if more than 95% of characters are printable
	printableRatio := float64(printableCount) / float64(len(buffer))
	return printableRatio > 0.95
}
