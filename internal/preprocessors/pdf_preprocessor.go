// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"mrz-scan/internal/observability"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFPreprocessor extracts text from PDF files: scanned travel documents are
// commonly archived as PDFs with an OCR text layer carrying the MRZ
type PDFPreprocessor struct {
	observer  *observability.StandardObserver
	pdfConfig *model.Configuration
}

var _ observability.Observable = (*PDFPreprocessor)(nil)

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	return &PDFPreprocessor{
		pdfConfig: model.NewDefaultConfiguration(),
	}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Preprocessor"
}

// GetComponentName returns the component identifier
func (pp *PDFPreprocessor) GetComponentName() string {
	return "pdf_preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".pdf"
}

// Process validates the PDF structure, then extracts its text layer and the
// MRZ candidate lines within it
func (pp *PDFPreprocessor) Process(filePath string) (*ExtractedDocument, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming(pp.GetComponentName(), "process_file", filePath)
		if pp.observer.DebugObserver != nil {
			finishStep = pp.observer.DebugObserver.StartStep(pp.GetComponentName(), "process_file", filePath)
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
			ProcessorType: "pdf",
			Success:       false,
			Error:         err,
		}, err
	}

	// Structural validation first: a corrupt PDF fails loudly here instead of
	// producing garbage candidate lines downstream
	if err := api.ValidateFile(filePath, pp.pdfConfig); err != nil {
		return fail(fmt.Errorf("invalid PDF file: %w", err))
	}

	ctx, err := api.ReadContextFile(filePath)
	if err != nil {
		return fail(fmt.Errorf("failed to read PDF context: %w", err))
	}
	pageCount := ctx.PageCount

	text, err := pp.extractText(filePath)
	if err != nil {
		return fail(err)
	}

	candidates := ExtractCandidates(text)

	result := &ExtractedDocument{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Candidates:    candidates,
		Format:        "PDF",
		PageCount:     pageCount,
		LineCount:     strings.Count(text, "\n") + 1,
		ProcessorType: "pdf",
		Success:       true,
		Metadata:      make(map[string]interface{}),
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"page_count":      pageCount,
			"candidate_count": len(candidates),
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Extracted %d page(s), %d MRZ candidate group(s)", pageCount, len(candidates)))
	}

	return result, nil
}

// extractText pulls the text layer from every page, preserving line structure
// so that MRZ lines survive intact
func (pp *PDFPreprocessor) extractText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()

	// Travel document scans are short; a cap keeps adversarial inputs cheap
	const maxPages = 50
	if pageCount > maxPages {
		pageCount = maxPages
	}

	var buf bytes.Buffer
	for i := 1; i <= pageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := extractPageText(p)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}

	return buf.String(), nil
}

// extractPageText extracts text using row-based positioning so characters of
// one MRZ line end up on one output line
func extractPageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		// Fallback to simple text extraction if row-based fails
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// Top-to-bottom reading order
	sort.Slice(sortedRows, func(i, j int) bool {
		return averageY(sortedRows[i].Content) < averageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

// averageY calculates the average Y coordinate for text elements in a row
func averageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}

	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}

	return totalY / float64(len(textElements))
}

// reconstructRowText reconstructs text from a row in left-to-right order.
// Unlike prose extraction, no spaces are inserted for small gaps: MRZ
// characters are individually positioned glyphs, and injected spaces would
// split the line.
func reconstructRowText(textElements []pdf.Text) string {
	sortedElements := make([]pdf.Text, len(textElements))
	copy(sortedElements, textElements)

	sort.Slice(sortedElements, func(i, j int) bool {
		return sortedElements[i].X < sortedElements[j].X
	})

	var buf bytes.Buffer
	for i, element := range sortedElements {
		buf.WriteString(element.S)

		if i < len(sortedElements)-1 {
			nextElement := sortedElements[i+1]
			gap := nextElement.X - (element.X + element.W)

			fontSize := element.FontSize
			if fontSize <= 0 {
				fontSize = 12
			}

			// A gap wider than one glyph cell separates words, not characters
			if gap > fontSize {
				buf.WriteString(" ")
			}
		}
	}

	return buf.String()
}
