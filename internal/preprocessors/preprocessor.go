// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"path/filepath"

	"mrz-scan/internal/mrz"
	"mrz-scan/internal/observability"
)

// ExtractedDocument represents content that has been processed by a preprocessor
type ExtractedDocument struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Candidates holds the MRZ-looking line groups found in the text, one
	// group per suspected document
	Candidates [][]mrz.CandidateLine

	// Content metadata
	Format    string
	PageCount int
	LineCount int

	// Hints lists advisory capture-quality warnings (EXIF-derived, image
	// inputs only); they travel with the decode results so a noisy or rotated
	// capture is explained to the user, not silently decoded worse
	Hints []string

	// Processing information
	ProcessorType string
	Success       bool
	Error         error

	// Additional metadata (capture hints for images, form data presence, ...)
	Metadata map[string]interface{}
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ExtractedDocument, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// ProcessFile processes a file with the first preprocessor that succeeds
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ExtractedDocument, error) {
	var availablePreprocessors []Preprocessor
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			availablePreprocessors = append(availablePreprocessors, p)
		}
	}

	if len(availablePreprocessors) == 0 {
		return &ExtractedDocument{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "none",
			Success:       false,
		}, nil
	}

	var lastError error
	for _, preprocessor := range availablePreprocessors {
		result, err := preprocessor.Process(filePath)
		if err == nil && result != nil && result.Success {
			return result, nil
		}
		lastError = err
	}

	// All preprocessors failed, return the last error
	return &ExtractedDocument{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		ProcessorType: "failed",
		Success:       false,
		Error:         lastError,
	}, lastError
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// DefaultManager builds a manager with all built-in preprocessors registered
func DefaultManager(observer *observability.StandardObserver) *PreprocessorManager {
	pm := NewPreprocessorManager()
	for _, p := range []Preprocessor{
		NewPDFPreprocessor(),
		NewImagePreprocessor(),
		NewPlainTextPreprocessor(),
	} {
		p.SetObserver(observer)
		pm.RegisterPreprocessor(p)
	}
	return pm
}
