// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

// checkWeights is the ICAO 9303 weight cycle applied across a checked span.
var checkWeights = [3]int{7, 3, 1}

// CheckDigit computes the ICAO 9303 check digit for s: each character maps to
// its numeric value (digit itself, letter A=10..Z=35, filler 0), values are
// weighted 7,3,1 cyclically, and the sum is taken mod 10. Returns -1 when s
// contains a character outside the MRZ alphabet.
func CheckDigit(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		v := charValue(s[i])
		if v < 0 {
			return -1
		}
		sum += v * checkWeights[i%3]
	}
	return sum % 10
}

// digitMatches reports whether the declared check character matches a computed
// check digit. A filler in the check position counts as a match only when the
// checked span is entirely filler (TD3 allows '<' in place of '0' for an empty
// personal number field).
func digitMatches(declared byte, computed int, span string) bool {
	if computed < 0 {
		return false
	}
	if declared == Filler {
		return computed == 0 && isAllFiller(span)
	}
	return declared >= '0' && declared <= '9' && int(declared-'0') == computed
}

func isAllFiller(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != Filler {
			return false
		}
	}
	return true
}

// validateChecks runs every per-field check digit of the layout over the
// current field values, updating each checked field's status. A failing
// checksum is data: the field transitions to StatusFailed and becomes a
// candidate for the reconciliation engine. The composite check is evaluated
// separately (see compositeValue) since it can fail even when every
// individual check passes.
func validateChecks(st *decodeState) {
	for i := range st.fields {
		f := &st.fields[i]
		if f.Spec.Kind != KindCheckDigit {
			continue
		}
		target := st.fieldByName(f.Spec.Over)
		if target == nil {
			continue
		}
		if f.Status == StatusFailed || target.Status == StatusFailed {
			// Unmapped characters in either the span or the digit make the
			// check unverifiable.
			target.CheckPassed = false
			continue
		}
		if digitMatches(f.Value[0], CheckDigit(target.Value), target.Value) {
			target.CheckPassed = true
			continue
		}
		target.Status = StatusFailed
		target.Reason = ReasonChecksumFailure
		target.CheckPassed = false
	}
}

// compositeSpan concatenates the layout's composite spans over the current
// line buffers. Corrections write back into the buffers, so the composite is
// always evaluated against corrected text.
func (st *decodeState) compositeSpan() string {
	var out []rune
	for _, s := range st.layout.Composite {
		out = append(out, st.lines[s.Line][s.Start:s.End]...)
	}
	return string(out)
}

// validateComposite checks the composite digit over the current line buffers.
func validateComposite(st *decodeState) bool {
	digit := st.fieldByKind(KindCompositeCheck)
	if digit == nil || digit.Status == StatusFailed {
		return false
	}
	span := st.compositeSpan()
	return digitMatches(digit.Value[0], CheckDigit(span), span)
}
