// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mrz implements the Machine-Readable Zone decoding and validation
// engine: it takes noisy, possibly OCR-garbled text lines from the MRZ band
// of an identity document and turns them into a checksum-verified identity
// record, or a precise diagnosis of why it could not.
//
// The engine is a pure, synchronous, single-call computation with no shared
// mutable state: a single Engine value is safe for concurrent use from any
// number of goroutines.
package mrz

import "strings"

// Options holds the engine's policy knobs. The defaults follow common MRZ
// reader convention; none of them are prescribed by ICAO 9303 itself, which
// is why they are configuration rather than constants.
type Options struct {
	// PivotYear splits two-digit years between centuries: YY >= PivotYear
	// decodes as 19YY, the rest as 20YY.
	PivotYear int

	// CorrectionBudget is the maximum number of character substitutions the
	// reconciliation search may combine for one field.
	CorrectionBudget int

	// MaxAttempts caps the total checksum evaluations per field during
	// correction, bounding worst-case work on adversarial input.
	MaxAttempts int

	// FormatPriority is the order layouts are tried during detection.
	FormatPriority []Format
}

// DefaultOptions returns the conventional policy defaults: pivot year 50,
// an edit budget of 2, and TD3-first detection.
func DefaultOptions() Options {
	return Options{
		PivotYear:        50,
		CorrectionBudget: 2,
		MaxAttempts:      5000,
		FormatPriority:   DefaultFormatPriority,
	}
}

// Engine decodes MRZ candidate line sets. Stateless and reentrant: every
// Decode call operates only on its own inputs and locals.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options. Zero-valued options
// fall back to the defaults.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.PivotYear <= 0 {
		opts.PivotYear = def.PivotYear
	}
	if opts.CorrectionBudget <= 0 {
		opts.CorrectionBudget = def.CorrectionBudget
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if len(opts.FormatPriority) == 0 {
		opts.FormatPriority = def.FormatPriority
	}
	return &Engine{opts: opts}
}

// Outcome classifies a decode result.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeRejected       Outcome = "rejected"
)

// FieldResult is the per-field audit entry surfaced to callers: enough
// structure to present a precise failure reason, not a generic error string.
type FieldResult struct {
	Name          string `json:"name" yaml:"name"`
	Raw           string `json:"raw" yaml:"raw"`
	Value         string `json:"value" yaml:"value"`
	Status        string `json:"status" yaml:"status"`
	CorrectedFrom string `json:"corrected_from,omitempty" yaml:"corrected_from,omitempty"`
	Reason        string `json:"reason,omitempty" yaml:"reason,omitempty"`
	CheckPassed   bool   `json:"check_passed" yaml:"check_passed"`
}

// DecodeOutcome is the engine's sole externally visible result type. No
// errors or panics cross the boundary for malformed input; rejection reasons
// travel as data.
type DecodeOutcome struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Reason is set for rejected outcomes: NoFormatMatch, ChecksumFailure,
	// UnmappedCharacter or CorrectionBudgetExceeded.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Record is present for success and partial success.
	Record *IdentityRecord `json:"record,omitempty" yaml:"record,omitempty"`

	// Unverified lists field names whose checks did not validate, for
	// partial successes.
	Unverified []string `json:"unverified,omitempty" yaml:"unverified,omitempty"`

	Format         Format        `json:"-" yaml:"-"`
	FormatName     string        `json:"format,omitempty" yaml:"format,omitempty"`
	CompositeValid bool          `json:"composite_valid" yaml:"composite_valid"`
	Fields         []FieldResult `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// decodeState carries one decode invocation through the pipeline stages. All
// of it is local to the call.
type decodeState struct {
	layout     Layout
	normalized []NormalizedLine

	// lines are mutable working buffers of the normalized text; corrections
	// write back here so the composite check always sees corrected spans.
	lines [][]rune

	fields         []DecodedField
	compositeValid bool
}

func (st *decodeState) fieldByName(name string) *DecodedField {
	for i := range st.fields {
		if st.fields[i].Spec.Name == name {
			return &st.fields[i]
		}
	}
	return nil
}

func (st *decodeState) fieldByKind(kind FieldKind) *DecodedField {
	for i := range st.fields {
		if st.fields[i].Spec.Kind == kind {
			return &st.fields[i]
		}
	}
	return nil
}

// checkDigitFor returns the check digit field covering the named field.
func (st *decodeState) checkDigitFor(name string) *DecodedField {
	for i := range st.fields {
		f := &st.fields[i]
		if f.Spec.Kind == KindCheckDigit && f.Spec.Over == name {
			return f
		}
	}
	return nil
}

// Decode runs the full pipeline over a candidate line set: normalization,
// format detection, field splitting, check-digit validation, bounded
// correction of failed checks, and record assembly. Decoding is atomic per
// document; the same input always yields the same DecodeOutcome.
func (e *Engine) Decode(candidates []CandidateLine) DecodeOutcome {
	// The engine trims whitespace only at line boundaries, once, before
	// matching. Interior content is never mutated here.
	normalized := make([]NormalizedLine, 0, len(candidates))
	for i, c := range candidates {
		c.Text = strings.TrimSpace(c.Text)
		normalized = append(normalized, NormalizeLine(c, i))
	}

	layout, ok := DetectFormat(normalized, e.opts.FormatPriority)
	if !ok {
		return DecodeOutcome{
			Outcome: OutcomeRejected,
			Reason:  ReasonNoFormatMatch,
		}
	}

	st := &decodeState{
		layout:     layout,
		normalized: normalized,
		lines:      make([][]rune, len(normalized)),
	}
	for i, l := range normalized {
		st.lines[i] = []rune(l.Text)
	}

	st.fields = splitFields(layout, normalized)
	validateChecks(st)
	e.reconcile(st)
	st.compositeValid = e.reconcileComposite(st)

	out := e.assembleRecord(st)
	out.FormatName = layout.Format.String()
	return out
}

// fieldResults converts the internal field sequence into the audit view.
func fieldResults(fields []DecodedField) []FieldResult {
	out := make([]FieldResult, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		out = append(out, FieldResult{
			Name:          f.Spec.Name,
			Raw:           f.Raw,
			Value:         f.Value,
			Status:        f.Status.String(),
			CorrectedFrom: f.CorrectedFrom,
			Reason:        f.Reason,
			CheckPassed:   f.CheckPassed,
		})
	}
	return out
}
