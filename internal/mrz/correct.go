// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import "sort"

// candidatePosition is one column the correction search may substitute,
// together with its ranked alternative readings (chosen character excluded).
type candidatePosition struct {
	pos        int // absolute column on the field's line
	alts       string
	confidence float64
}

// reconcile attempts to repair every failed checked field by searching for a
// minimal substitution assignment, drawn from the normalizer's ambiguity sets,
// that satisfies the field's check digit. Single-character fixes are tried
// before pairs, up to the configured edit budget. The search stops at the
// first satisfying assignment; it does not look for a "better" one.
//
// Fields that failed because of unmapped characters are skipped outright: no
// ambiguity set exists for an unmapped position, so they are not correctable.
//
// An explicit per-field attempt cap bounds the work regardless of input,
// keeping the worst case (alternative count raised to the edit budget) from
// running away on adversarial lines. Each field's search gets a fresh cap: a
// hard repair early in the document must not starve the fields after it.
func (e *Engine) reconcile(st *decodeState) {
	for i := range st.fields {
		f := &st.fields[i]
		if f.Spec.Kind == KindCheckDigit || f.Spec.Kind == KindCompositeCheck {
			continue
		}
		if f.Status != StatusFailed || f.Reason != ReasonChecksumFailure {
			continue
		}
		digit := st.checkDigitFor(f.Spec.Name)
		if digit == nil {
			continue
		}
		attempts := e.opts.MaxAttempts
		if !e.correctField(st, f, digit, &attempts) {
			// Terminal. No further retries on this field.
			f.Reason = ReasonCorrectionBudgetExceeded
		}
	}
}

// correctField runs the bounded substitution search for one field and its
// check digit. The digit's own position participates in the search: a misread
// check digit is just as common as a misread span character. Returns true
// when a satisfying assignment was found and applied.
func (e *Engine) correctField(st *decodeState, target, digit *DecodedField, attempts *int) bool {
	line := st.normalized[target.Spec.Line]
	positions := gatherCandidates(line, target.Spec.Start, target.Spec.End())
	positions = append(positions, gatherCandidates(line, digit.Spec.Start, digit.Spec.End())...)

	// Most-likely-wrong character first: ascending OCR confidence, stable so
	// equal-confidence positions keep column order.
	sort.SliceStable(positions, func(a, b int) bool {
		return positions[a].confidence < positions[b].confidence
	})

	buf := st.lines[target.Spec.Line]
	test := func() bool {
		value := string(buf[target.Spec.Start:target.Spec.End()])
		return digitMatches(byte(buf[digit.Spec.Start]), CheckDigit(value), value)
	}

	for edits := 1; edits <= e.opts.CorrectionBudget; edits++ {
		pool := positions
		if edits > 1 {
			// Multi-character repairs are restricted to positions the OCR
			// itself marked uncertain. Without that evidence a two-edit
			// assignment that satisfies a mod-10 check is more likely an
			// invented value than a fix, and the composite check cannot
			// always tell the difference.
			pool = uncertainPositions(positions)
		}
		if searchEdits(buf, pool, 0, edits, attempts, test) {
			applyCorrection(st, target, digit)
			return true
		}
	}
	return false
}

// uncertainPositions filters to positions with OCR confidence below full.
func uncertainPositions(positions []candidatePosition) []candidatePosition {
	var out []candidatePosition
	for _, p := range positions {
		if p.confidence < 1.0 {
			out = append(out, p)
		}
	}
	return out
}

// searchEdits tries every assignment of exactly `remaining` substitutions over
// positions[from:], mutating buf in place and restoring it on backtrack.
// Returns true as soon as test() passes; every call to test() consumes one
// attempt from the cap.
func searchEdits(buf []rune, positions []candidatePosition, from, remaining int, attempts *int, test func() bool) bool {
	if remaining == 0 {
		if *attempts <= 0 {
			return false
		}
		*attempts--
		return test()
	}
	for i := from; i <= len(positions)-remaining; i++ {
		p := positions[i]
		saved := buf[p.pos]
		for j := 0; j < len(p.alts); j++ {
			if *attempts <= 0 {
				buf[p.pos] = saved
				return false
			}
			buf[p.pos] = rune(p.alts[j])
			if searchEdits(buf, positions, i+1, remaining-1, attempts, test) {
				return true
			}
		}
		buf[p.pos] = saved
	}
	return false
}

// gatherCandidates collects the substitutable positions of [start,end):
// positions whose ambiguity set offers at least one reading besides the
// chosen character.
func gatherCandidates(line NormalizedLine, start, end int) []candidatePosition {
	var out []candidatePosition
	for pos := start; pos < end; pos++ {
		alts := line.Alternatives[pos]
		if len(alts) < 2 {
			continue
		}
		out = append(out, candidatePosition{
			pos:        pos,
			alts:       alts[1:], // drop the chosen character
			confidence: line.Confidence[pos],
		})
	}
	return out
}

// applyCorrection finalizes a successful search: the line buffer already holds
// the corrected text, so the field (and, when its own character changed, the
// check digit) transitions to StatusCorrected with the original preserved.
func applyCorrection(st *decodeState, target, digit *DecodedField) {
	buf := st.lines[target.Spec.Line]

	value := string(buf[target.Spec.Start:target.Spec.End()])
	if value != target.Raw {
		target.CorrectedFrom = target.Raw
		target.Status = StatusCorrected
	} else {
		target.Status = StatusValid
	}
	target.Value = value
	target.Reason = ""
	target.CheckPassed = true

	digitValue := string(buf[digit.Spec.Start:digit.Spec.End()])
	if digitValue != digit.Raw {
		digit.CorrectedFrom = digit.Raw
		digit.Status = StatusCorrected
		digit.Value = digitValue
	}
}

// reconcileComposite re-checks the composite digit after field corrections
// and, when it still fails, tries the digit's own alternative readings as a
// last single-edit repair. Cross-field span corruption beyond that is
// reported, not guessed at.
func (e *Engine) reconcileComposite(st *decodeState) bool {
	if validateComposite(st) {
		return true
	}
	digit := st.fieldByKind(KindCompositeCheck)
	if digit == nil || digit.Status == StatusFailed {
		return false
	}

	span := st.compositeSpan()
	computed := CheckDigit(span)
	if computed < 0 {
		return false
	}

	line := st.normalized[digit.Spec.Line]
	alts := line.Alternatives[digit.Spec.Start]
	for j := 1; j < len(alts); j++ {
		if digitMatches(alts[j], computed, span) {
			digit.CorrectedFrom = digit.Raw
			digit.Status = StatusCorrected
			digit.Value = string(alts[j])
			st.lines[digit.Spec.Line][digit.Spec.Start] = rune(alts[j])
			return true
		}
	}
	return false
}
