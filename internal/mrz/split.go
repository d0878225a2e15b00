// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

// FieldStatus tracks a decoded field through validation and correction.
type FieldStatus int

const (
	// StatusValid means the field's raw slice is clean and every owning check
	// digit (if any) verified.
	StatusValid FieldStatus = iota

	// StatusCorrected means a check initially failed and a bounded search
	// found a minimal substitution among known OCR confusions that satisfies
	// it. The pre-correction text is preserved for audit.
	StatusCorrected

	// StatusFailed is terminal: unmapped characters, or a check that no
	// in-budget correction could satisfy.
	StatusFailed
)

func (s FieldStatus) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusCorrected:
		return "corrected"
	default:
		return "failed"
	}
}

// Failure reasons recorded on DecodedField and surfaced in DecodeOutcome.
// These are data, not errors: the engine never raises for malformed input.
const (
	ReasonUnmappedCharacter        = "UnmappedCharacter"
	ReasonChecksumFailure          = "ChecksumFailure"
	ReasonCorrectionBudgetExceeded = "CorrectionBudgetExceeded"
	ReasonNoFormatMatch            = "NoFormatMatch"
)

// DecodedField is one named slice of the MRZ with its validation state.
// Created by the field splitter; only the reconciliation engine mutates it
// afterwards, and only along the allowed status transitions.
type DecodedField struct {
	Spec FieldSpec

	// Raw is the slice exactly as normalized, before any correction.
	Raw string

	// Value is the current field text. Equal to Raw unless corrected.
	Value string

	Status FieldStatus

	// CorrectedFrom preserves the pre-correction text when Status is
	// StatusCorrected.
	CorrectedFrom string

	// Reason carries the failure taxonomy entry when Status is StatusFailed.
	Reason string

	// CheckPassed records whether the owning check digit verified, directly
	// or via correction. Always true for fields no check digit covers.
	CheckPassed bool
}

// splitFields slices each normalized line into the layout's named fixed-width
// fields. Pure function of (layout, lines): a field starts Valid unless its
// slice contains an unmapped character, in which case it starts Failed and is
// excluded from correction later (no ambiguity set exists for an unmapped
// position).
func splitFields(layout Layout, lines []NormalizedLine) []DecodedField {
	fields := make([]DecodedField, 0, len(layout.Fields))
	for _, spec := range layout.Fields {
		line := lines[spec.Line]
		raw := string([]rune(line.Text)[spec.Start:spec.End()])

		f := DecodedField{
			Spec:        spec,
			Raw:         raw,
			Value:       raw,
			Status:      StatusValid,
			CheckPassed: true,
		}
		if line.HasUnmapped(spec.Start, spec.End()) {
			f.Status = StatusFailed
			f.Reason = ReasonUnmappedCharacter
			f.CheckPassed = false
		}
		fields = append(fields, f)
	}
	return fields
}
