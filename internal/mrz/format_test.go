// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import (
	"strings"
	"testing"
)

func normalizeAll(lines ...string) []NormalizedLine {
	out := make([]NormalizedLine, 0, len(lines))
	for i, l := range lines {
		out = append(out, NormalizeLine(CandidateLine{Text: l}, i))
	}
	return out
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  Format
	}{
		{"TD3 passport", []string{strings.Repeat("A", 44), strings.Repeat("B", 44)}, TD3},
		{"TD2", []string{strings.Repeat("A", 36), strings.Repeat("B", 36)}, TD2},
		{"TD1 id card", []string{strings.Repeat("A", 30), strings.Repeat("B", 30), strings.Repeat("C", 30)}, TD1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout, ok := DetectFormat(normalizeAll(tc.lines...), nil)
			if !ok {
				t.Fatal("expected a format match")
			}
			if layout.Format != tc.want {
				t.Errorf("detected %v, want %v", layout.Format, tc.want)
			}
		})
	}
}

func TestDetectFormat_NoMatch(t *testing.T) {
	cases := [][]string{
		{strings.Repeat("A", 40), strings.Repeat("B", 40)},
		{strings.Repeat("A", 44)},
		{strings.Repeat("A", 44), strings.Repeat("B", 36)},
		{},
		{strings.Repeat("A", 30), strings.Repeat("B", 30), strings.Repeat("C", 30), strings.Repeat("D", 30)},
	}
	for _, lines := range cases {
		if _, ok := DetectFormat(normalizeAll(lines...), nil); ok {
			t.Errorf("unexpected format match for %d lines", len(lines))
		}
	}
}

func TestDetectFormat_PriorityOrder(t *testing.T) {
	// Two 36-char lines match only TD2 regardless of priority, but a custom
	// priority that omits TD2 must not match at all: detection is driven by
	// the configured order, not by content heuristics.
	lines := normalizeAll(strings.Repeat("A", 36), strings.Repeat("B", 36))
	if _, ok := DetectFormat(lines, []Format{TD3, TD1}); ok {
		t.Error("format outside the priority list must not match")
	}
	layout, ok := DetectFormat(lines, []Format{TD2})
	if !ok || layout.Format != TD2 {
		t.Errorf("expected TD2 match, got %v ok=%v", layout.Format, ok)
	}
}

func TestParseFormat(t *testing.T) {
	for s, want := range map[string]Format{"TD1": TD1, "td2": TD2, "TD3": TD3} {
		got, ok := ParseFormat(s)
		if !ok || got != want {
			t.Errorf("ParseFormat(%q) = %v ok=%v, want %v", s, got, ok, want)
		}
	}
	if _, ok := ParseFormat("TD4"); ok {
		t.Error("unknown format name should not parse")
	}
}

// The static layout tables are the engine's backbone; a mistake there is a
// programming bug, so validate() must hold for all of them and the field
// grids must tile correctly.
func TestLayoutTables(t *testing.T) {
	for _, f := range []Format{TD1, TD2, TD3} {
		layout, ok := LayoutFor(f)
		if !ok {
			t.Fatalf("missing layout for %v", f)
		}

		// Every line must be fully covered by non-overlapping fields.
		for line := 0; line < layout.Lines; line++ {
			covered := make([]bool, layout.Width)
			for _, spec := range layout.Fields {
				if spec.Line != line {
					continue
				}
				for i := spec.Start; i < spec.End(); i++ {
					if covered[i] {
						t.Errorf("%v line %d column %d covered twice", f, line, i)
					}
					covered[i] = true
				}
			}
			for i, c := range covered {
				if !c {
					t.Errorf("%v line %d column %d not covered by any field", f, line, i)
				}
			}
		}

		// Every check digit must reference a real field on some line.
		for _, spec := range layout.Fields {
			if spec.Kind == KindCheckDigit {
				if _, ok := layout.Field(spec.Over); !ok {
					t.Errorf("%v check digit %s covers unknown field %q", f, spec.Name, spec.Over)
				}
			}
		}
	}
}
