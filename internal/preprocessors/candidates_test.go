// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"strings"
	"testing"
)

const td3Line1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
const td3Line2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"

func TestExtractCandidates_TD3InProse(t *testing.T) {
	text := strings.Join([]string{
		"Scan report for passport application 4711",
		"Operator: desk 3",
		"",
		td3Line1,
		td3Line2,
		"",
		"End of report",
	}, "\n")

	groups := ExtractCandidates(text)
	if len(groups) != 1 {
		t.Fatalf("expected 1 candidate group, got %d", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Fatalf("expected 2 lines in group, got %d", len(groups[0]))
	}
	if groups[0][0].Text != td3Line1 || groups[0][1].Text != td3Line2 {
		t.Errorf("group lines do not match input: %q / %q", groups[0][0].Text, groups[0][1].Text)
	}
}

func TestExtractCandidates_TrimsSurroundingWhitespace(t *testing.T) {
	text := "  " + td3Line1 + "  \n\t" + td3Line2 + "\n"
	groups := ExtractCandidates(text)
	if len(groups) != 1 {
		t.Fatalf("expected 1 candidate group, got %d", len(groups))
	}
	if groups[0][0].Text != td3Line1 {
		t.Errorf("whitespace not trimmed: %q", groups[0][0].Text)
	}
}

func TestExtractCandidates_TD1ThreeLines(t *testing.T) {
	text := strings.Join([]string{
		strings.Repeat("A", 30),
		strings.Repeat("B", 30),
		strings.Repeat("C", 30),
	}, "\n")

	groups := ExtractCandidates(text)
	if len(groups) != 1 {
		t.Fatalf("expected 1 candidate group, got %d", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("expected 3 lines for a 30-wide document, got %d", len(groups[0]))
	}
}

func TestExtractCandidates_StackedDocumentsChunked(t *testing.T) {
	// Two TD3 documents back to back with no separator line
	text := strings.Join([]string{td3Line1, td3Line2, td3Line1, td3Line2}, "\n")

	groups := ExtractCandidates(text)
	if len(groups) != 2 {
		t.Fatalf("expected 2 candidate groups, got %d", len(groups))
	}
}

func TestExtractCandidates_IgnoresProseAndPartials(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"no mrz lines", "just an ordinary paragraph\nwith two lines"},
		{"lone mrz line", td3Line1},
		{"prose of mrz width", strings.Repeat("a b ", 11)}, // 44 chars, too many spaces
		{"wrong width", strings.Repeat("A", 40) + "\n" + strings.Repeat("B", 40)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if groups := ExtractCandidates(tc.text); len(groups) != 0 {
				t.Errorf("expected no candidate groups, got %d", len(groups))
			}
		})
	}
}

func TestCaptureHints(t *testing.T) {
	hints := CaptureHints(map[string]string{
		"ISOSpeedRatings": "1600",
		"PixelXDimension": "800",
		"PixelYDimension": "600",
		"Orientation":     "6",
	})
	if len(hints) != 3 {
		t.Fatalf("expected 3 hints, got %d: %v", len(hints), hints)
	}

	// A clean capture produces no warnings
	hints = CaptureHints(map[string]string{
		"ISOSpeedRatings": "100",
		"PixelXDimension": "4000",
		"PixelYDimension": "3000",
		"Orientation":     "1",
	})
	if len(hints) != 0 {
		t.Errorf("expected no hints for a clean capture, got %v", hints)
	}
}
