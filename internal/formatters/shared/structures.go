// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"mrz-scan/internal/formatters"
	"mrz-scan/internal/mrz"
)

// Response represents the top-level response structure for JSON/YAML output
type Response struct {
	Summary Summary          `json:"summary" yaml:"summary"`
	Results []DocumentResult `json:"results" yaml:"results"`
}

// Summary aggregates outcomes across all decoded documents
type Summary struct {
	Total          int `json:"total" yaml:"total"`
	Success        int `json:"success" yaml:"success"`
	PartialSuccess int `json:"partial_success" yaml:"partial_success"`
	Rejected       int `json:"rejected" yaml:"rejected"`
}

// DocumentResult represents a single decoded document in JSON/YAML format
type DocumentResult struct {
	Source         string              `json:"source" yaml:"source"`
	Outcome        string              `json:"outcome" yaml:"outcome"`
	Format         string              `json:"format,omitempty" yaml:"format,omitempty"`
	Reason         string              `json:"reason,omitempty" yaml:"reason,omitempty"`
	Record         *mrz.IdentityRecord `json:"record,omitempty" yaml:"record,omitempty"`
	Unverified     []string            `json:"unverified,omitempty" yaml:"unverified,omitempty"`
	CompositeValid bool                `json:"composite_valid" yaml:"composite_valid"`
	Hints          []string            `json:"capture_hints,omitempty" yaml:"capture_hints,omitempty"`
	Lines          []string            `json:"mrz_lines,omitempty" yaml:"mrz_lines,omitempty"`
	Fields         []mrz.FieldResult   `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// ConvertResults converts decode results into the shared JSON/YAML shape.
// Field-level audit detail only appears in verbose mode; raw MRZ lines only
// when explicitly requested, since they contain everything the record does.
func ConvertResults(results []formatters.Result, options formatters.FormatterOptions) Response {
	response := Response{Results: make([]DocumentResult, 0, len(results))}

	for _, r := range results {
		out := r.Outcome

		doc := DocumentResult{
			Source:         r.Source,
			Outcome:        string(out.Outcome),
			Format:         out.FormatName,
			Reason:         out.Reason,
			Record:         out.Record,
			Unverified:     out.Unverified,
			CompositeValid: out.CompositeValid,
			Hints:          r.Hints,
		}
		if options.ShowMRZ {
			doc.Lines = r.Lines
		}
		if options.Verbose {
			doc.Fields = out.Fields
		}

		response.Summary.Total++
		switch out.Outcome {
		case mrz.OutcomeSuccess:
			response.Summary.Success++
		case mrz.OutcomePartialSuccess:
			response.Summary.PartialSuccess++
		default:
			response.Summary.Rejected++
		}

		response.Results = append(response.Results, doc)
	}

	return response
}
