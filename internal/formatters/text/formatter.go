// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"mrz-scan/internal/formatters"
	"mrz-scan/internal/mrz"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(results []formatters.Result, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	if len(results) == 0 {
		return "No documents decoded.", nil
	}

	var builder strings.Builder

	if !options.Verbose {
		f.appendHeaders(&builder, results, options)
	}

	for _, r := range results {
		if options.Verbose {
			f.appendDetailedResult(&builder, r, options)
			continue
		}
		f.appendSummaryLine(&builder, r, results, options)
	}

	return builder.String(), nil
}

// outcomeColor maps a decode outcome onto the display color
func (f *Formatter) outcomeColor(outcome mrz.Outcome) *color.Color {
	switch outcome {
	case mrz.OutcomeSuccess:
		return f.colors["green"]
	case mrz.OutcomePartialSuccess:
		return f.colors["yellow"]
	default:
		return f.colors["red"]
	}
}

// outcomeLabel returns the fixed-width outcome tag for the summary table
func (f *Formatter) outcomeLabel(outcome mrz.Outcome) string {
	switch outcome {
	case mrz.OutcomeSuccess:
		return "OK"
	case mrz.OutcomePartialSuccess:
		return "PARTIAL"
	default:
		return "REJECT"
	}
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, results []formatters.Result, options formatters.FormatterOptions) {
	nameWidth := f.calculateNameColumnWidth(results)
	headerStr := fmt.Sprintf("%-9s %-6s %-11s %-*s %-8s %-12s %s\n",
		"OUTCOME", "FORMAT", "DOC NUMBER", nameWidth, "NAME", "CONF%", "REASON", "SOURCE")
	if !options.NoColor {
		headerStr = f.colors["white"].Sprintf("%-9s %-6s %-11s %-*s %-8s %-12s %s\n",
			"OUTCOME", "FORMAT", "DOC NUMBER", nameWidth, "NAME", "CONF%", "REASON", "SOURCE")
	}
	builder.WriteString(headerStr)

	totalWidth := 9 + 1 + 6 + 1 + 11 + 1 + nameWidth + 1 + 8 + 1 + 12 + 1 + 10 // approximate
	separator := strings.Repeat("-", totalWidth) + "\n"
	if !options.NoColor {
		separator = f.colors["white"].Sprint(strings.Repeat("-", totalWidth) + "\n")
	}
	builder.WriteString(separator)
}

// calculateNameColumnWidth calculates the optimal width for the name column
func (f *Formatter) calculateNameColumnWidth(results []formatters.Result) int {
	maxWidth := 10
	for _, r := range results {
		if r.Outcome.Record == nil {
			continue
		}
		name := displayName(r.Outcome.Record)
		if runeCount := len([]rune(name)); runeCount > maxWidth {
			maxWidth = runeCount
		}
	}
	// Cap at 30 characters for readability
	if maxWidth > 30 {
		maxWidth = 30
	}
	return maxWidth
}

func displayName(rec *mrz.IdentityRecord) string {
	if rec.GivenNames == "" {
		return rec.Surname
	}
	return rec.Surname + ", " + rec.GivenNames
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, r formatters.Result, allResults []formatters.Result, options formatters.FormatterOptions) {
	out := r.Outcome
	outcomeCol := f.outcomeColor(out.Outcome)

	outcomeStr := fmt.Sprintf("[%-7s]", f.outcomeLabel(out.Outcome))
	if !options.NoColor {
		outcomeStr = outcomeCol.Sprintf("[%-7s]", f.outcomeLabel(out.Outcome))
	}

	formatName := out.FormatName
	if formatName == "" {
		formatName = "-"
	}
	formatStr := fmt.Sprintf("%-6s", formatName)
	if !options.NoColor {
		formatStr = f.colors["cyan"].Sprintf("%-6s", formatName)
	}

	docNumber, name, confidence := "-", "-", "-"
	if out.Record != nil {
		docNumber = out.Record.DocumentNumber
		name = displayName(out.Record)
		confidence = fmt.Sprintf("%6.2f%%", out.Record.Confidence)
	}

	nameWidth := f.calculateNameColumnWidth(allResults)
	runes := []rune(name)
	if len(runes) > nameWidth {
		name = string(runes[:nameWidth-3]) + "..."
	}

	docStr := fmt.Sprintf("%-11s", docNumber)
	nameStr := fmt.Sprintf("%-*s", nameWidth, name)
	confStr := fmt.Sprintf("%-8s", confidence)
	if !options.NoColor {
		docStr = f.colors["magenta"].Sprintf("%-11s", docNumber)
		confStr = f.colors["blue"].Sprintf("%-8s", confidence)
	}

	reason := out.Reason
	if reason == "" {
		reason = "-"
	}
	reasonStr := fmt.Sprintf("%-12s", reason)
	if !options.NoColor && out.Outcome == mrz.OutcomeRejected {
		reasonStr = f.colors["red"].Sprintf("%-12s", reason)
	}

	sourceStr := r.Source
	if !options.NoColor {
		sourceStr = f.colors["white"].Sprint(r.Source)
	}

	fmt.Fprintf(builder, "%s %s %s %s %s %s %s\n",
		outcomeStr, formatStr, docStr, nameStr, confStr, reasonStr, sourceStr)

	if options.ShowMRZ {
		for _, line := range r.Lines {
			fmt.Fprintf(builder, "          %s\n", line)
		}
	}

	for _, hint := range r.Hints {
		hintStr := fmt.Sprintf("          hint: %s\n", hint)
		if !options.NoColor {
			hintStr = f.colors["yellow"].Sprintf("          hint: %s\n", hint)
		}
		builder.WriteString(hintStr)
	}
}

// appendDetailedResult adds detailed decode information to the string builder
func (f *Formatter) appendDetailedResult(builder *strings.Builder, r formatters.Result, options formatters.FormatterOptions) {
	out := r.Outcome

	if !options.NoColor {
		f.colors["white"].Fprintf(builder, "=== Decode Details ===\n")
	} else {
		fmt.Fprintf(builder, "=== Decode Details ===\n")
	}

	if !options.NoColor {
		f.colors["cyan"].Fprintf(builder, "Source: ")
		f.colors["white"].Fprintf(builder, "%s\n", r.Source)
		f.colors["cyan"].Fprintf(builder, "Outcome: ")
		f.outcomeColor(out.Outcome).Fprintf(builder, "%s\n", out.Outcome)
	} else {
		fmt.Fprintf(builder, "Source: %s\n", r.Source)
		fmt.Fprintf(builder, "Outcome: %s\n", out.Outcome)
	}

	if out.Reason != "" {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Reason: ")
			f.colors["red"].Fprintf(builder, "%s\n", out.Reason)
		} else {
			fmt.Fprintf(builder, "Reason: %s\n", out.Reason)
		}
	}

	if out.FormatName != "" {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Format: ")
			f.colors["white"].Fprintf(builder, "%s\n", out.FormatName)
		} else {
			fmt.Fprintf(builder, "Format: %s\n", out.FormatName)
		}
	}

	if options.ShowMRZ && len(r.Lines) > 0 {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "MRZ lines:\n")
		} else {
			fmt.Fprintf(builder, "MRZ lines:\n")
		}
		for _, line := range r.Lines {
			fmt.Fprintf(builder, "  %s\n", line)
		}
	}

	if len(r.Hints) > 0 {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Capture hints:\n")
		} else {
			fmt.Fprintf(builder, "Capture hints:\n")
		}
		for _, hint := range r.Hints {
			if !options.NoColor {
				f.colors["yellow"].Fprintf(builder, "  %s\n", hint)
			} else {
				fmt.Fprintf(builder, "  %s\n", hint)
			}
		}
	}

	if rec := out.Record; rec != nil {
		f.appendRecord(builder, rec, options)
	}

	if len(out.Fields) > 0 {
		f.appendFieldAudit(builder, out.Fields, options)
	}

	fmt.Fprintln(builder)
}

// appendRecord renders the assembled identity record
func (f *Formatter) appendRecord(builder *strings.Builder, rec *mrz.IdentityRecord, options formatters.FormatterOptions) {
	rows := []struct{ label, value string }{
		{"Document type", rec.DocumentType},
		{"Issuing state", rec.IssuingState},
		{"Name", displayName(rec)},
		{"Document number", rec.DocumentNumber},
		{"Nationality", rec.Nationality},
		{"Birth date", rec.BirthDate},
		{"Sex", rec.Sex},
		{"Expiry date", rec.ExpiryDate},
		{"Optional data", rec.OptionalData},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "%s: ", row.label)
			f.colors["white"].Fprintf(builder, "%s\n", row.value)
		} else {
			fmt.Fprintf(builder, "%s: %s\n", row.label, row.value)
		}
	}

	if !options.NoColor {
		f.colors["cyan"].Fprintf(builder, "Confidence: ")
		f.colors["blue"].Fprintf(builder, "%.2f%%\n", rec.Confidence)
	} else {
		fmt.Fprintf(builder, "Confidence: %.2f%%\n", rec.Confidence)
	}

	if len(rec.Unverified) > 0 {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Unverified fields: ")
			f.colors["yellow"].Fprintf(builder, "%s\n", strings.Join(rec.Unverified, ", "))
		} else {
			fmt.Fprintf(builder, "Unverified fields: %s\n", strings.Join(rec.Unverified, ", "))
		}
	}
}

// appendFieldAudit renders the per-field validation results
func (f *Formatter) appendFieldAudit(builder *strings.Builder, fields []mrz.FieldResult, options formatters.FormatterOptions) {
	if !options.NoColor {
		f.colors["cyan"].Fprintf(builder, "Field validation:\n")
	} else {
		fmt.Fprintf(builder, "Field validation:\n")
	}

	for _, field := range fields {
		detail := ""
		if field.CorrectedFrom != "" {
			detail = fmt.Sprintf(" (corrected from %q)", field.CorrectedFrom)
		} else if field.Reason != "" {
			detail = fmt.Sprintf(" (%s)", field.Reason)
		}

		if !options.NoColor {
			fmt.Fprintf(builder, "- %s: ", field.Name)
			switch field.Status {
			case "valid":
				f.colors["green"].Fprintf(builder, "%s%s\n", field.Status, detail)
			case "corrected":
				f.colors["yellow"].Fprintf(builder, "%s%s\n", field.Status, detail)
			default:
				f.colors["red"].Fprintf(builder, "%s%s\n", field.Status, detail)
			}
		} else {
			fmt.Fprintf(builder, "- %s: %s%s\n", field.Name, field.Status, detail)
		}
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
