// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import "strings"

// CandidateLine is one raw text line handed to the engine by the OCR /
// localization collaborator. Confidence and Alternatives are optional
// per-character annotations; when present they must be the same length as
// the decoded rune count of Text.
type CandidateLine struct {
	Text string

	// Confidence holds the OCR engine's per-character confidence in [0,1].
	// Nil when the producer supplies none.
	Confidence []float64

	// Alternatives holds OCR-provided alternative readings per character
	// position, most likely first. Nil when the producer supplies none.
	Alternatives []string
}

// NormalizedLine is the Character Normalizer's output: the line restricted to
// the MRZ alphabet plus per-position ambiguity data. Immutable once created.
type NormalizedLine struct {
	// Raw is the candidate text exactly as received (after boundary trim).
	Raw string

	// Text is the normalized line. Positions flagged in Unmapped carry the
	// original character verbatim.
	Text string

	// Index is the source line number within the candidate set.
	Index int

	// Alternatives[i] is the ordered set of plausible readings for position i,
	// starting with the chosen character. Unmapped positions have no
	// alternatives.
	Alternatives []string

	// Unmapped[i] marks positions whose character has no mapping into the
	// MRZ alphabet. Any field containing such a position fails validation.
	Unmapped []bool

	// Confidence[i] is the OCR confidence for position i, or 1.0 when the
	// producer supplied none.
	Confidence []float64
}

// HasUnmapped reports whether any position in [start,end) is unmapped.
func (l *NormalizedLine) HasUnmapped(start, end int) bool {
	for i := start; i < end && i < len(l.Unmapped); i++ {
		if l.Unmapped[i] {
			return true
		}
	}
	return false
}

// NormalizeLine maps a raw candidate line into the MRZ alphabet. It never
// fails: characters with no known mapping pass through verbatim and are
// flagged unmapped so that downstream validation rejects the affected field
// instead of the whole pipeline crashing.
//
// Each position's alternative set merges OCR-provided alternatives (when
// present) with the fixed confusion table, chosen character first, without
// duplicates.
func NormalizeLine(line CandidateLine, index int) NormalizedLine {
	raw := []rune(line.Text)
	out := NormalizedLine{
		Raw:          line.Text,
		Index:        index,
		Alternatives: make([]string, len(raw)),
		Unmapped:     make([]bool, len(raw)),
		Confidence:   make([]float64, len(raw)),
	}

	var text strings.Builder
	for i, r := range raw {
		c, ok := normalizeChar(r)
		if !ok {
			// Pass through verbatim; the field splitter turns this into a
			// Failed field rather than an error.
			text.WriteRune(r)
			out.Unmapped[i] = true
			out.Confidence[i] = 0
			continue
		}

		text.WriteByte(c)
		out.Confidence[i] = confidenceAt(line.Confidence, i)
		out.Alternatives[i] = buildAlternatives(c, ocrAlternativesAt(line.Alternatives, i))
	}

	out.Text = text.String()
	return out
}

// normalizeChar maps a single rune into the MRZ alphabet. The second return
// value is false when no mapping exists.
func normalizeChar(r rune) (byte, bool) {
	if r >= 'a' && r <= 'z' {
		r = r - 'a' + 'A'
	}
	if r < 128 && isMRZChar(byte(r)) {
		return byte(r), true
	}
	if c, ok := rawMappings[r]; ok {
		return c, true
	}
	return 0, false
}

// buildAlternatives assembles the ordered ambiguity set for one position:
// chosen character, then OCR-supplied alternatives, then the static confusion
// table, deduplicated and restricted to the MRZ alphabet.
func buildAlternatives(chosen byte, ocrAlts string) string {
	var b strings.Builder
	seen := [256]bool{}

	add := func(c byte) {
		if !seen[c] && isMRZChar(c) {
			seen[c] = true
			b.WriteByte(c)
		}
	}

	add(chosen)
	for i := 0; i < len(ocrAlts); i++ {
		c := ocrAlts[i]
		if c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		add(c)
	}
	for i, alts := 0, confusionsFor(chosen); i < len(alts); i++ {
		add(alts[i])
	}

	return b.String()
}

func confidenceAt(conf []float64, i int) float64 {
	if i < len(conf) {
		return conf[i]
	}
	return 1.0
}

func ocrAlternativesAt(alts []string, i int) string {
	if i < len(alts) {
		return alts[i]
	}
	return ""
}
