// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"strings"

	"mrz-scan/internal/mrz"
)

// mrzWidths maps a recognized MRZ line width to the number of lines a
// document of that width carries.
var mrzWidths = map[int]int{30: 3, 36: 2, 44: 2}

// looksLikeMRZ reports whether a trimmed line plausibly belongs to an MRZ
// band: one of the known widths, and almost entirely drawn from the MRZ
// alphabet. Lowercase counts; the normalizer folds case later. The threshold
// leaves room for a few OCR artifacts without sweeping in prose lines.
func looksLikeMRZ(line string) bool {
	runes := []rune(line)
	if _, ok := mrzWidths[len(runes)]; !ok {
		return false
	}
	mrzish := 0
	for _, r := range runes {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '<':
			mrzish++
		}
	}
	return float64(mrzish)/float64(len(runes)) >= 0.9
}

// ExtractCandidates scans extracted text for consecutive runs of MRZ-looking
// lines of equal width and groups them into per-document candidate sets. A
// run longer than one document (several documents stacked in one file) is
// chunked; a run shorter than a full document is dropped.
func ExtractCandidates(text string) [][]mrz.CandidateLine {
	var groups [][]mrz.CandidateLine
	var run []string
	runWidth := 0

	flush := func() {
		if len(run) > 0 {
			per := mrzWidths[runWidth]
			for i := 0; i+per <= len(run); i += per {
				group := make([]mrz.CandidateLine, 0, per)
				for _, l := range run[i : i+per] {
					group = append(group, mrz.CandidateLine{Text: l})
				}
				groups = append(groups, group)
			}
		}
		run = nil
		runWidth = 0
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !looksLikeMRZ(line) {
			flush()
			continue
		}
		width := len([]rune(line))
		if width != runWidth {
			flush()
			runWidth = width
		}
		run = append(run, line)
	}
	flush()

	return groups
}
