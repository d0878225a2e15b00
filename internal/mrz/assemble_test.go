// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import "testing"

func TestDecodeName(t *testing.T) {
	cases := []struct {
		name    string
		field   string
		surname string
		given   string
	}{
		{"surname and given names", "ERIKSSON<<ANNA<MARIA<<<<<<<<<<", "ERIKSSON", "ANNA MARIA"},
		{"multi part surname", "VAN<DER<BERG<<JAN<<<<<<<<<<<<<", "VAN DER BERG", "JAN"},
		{"surname only", "NILAVADHANANANDA<<<<<<<<<<<<<<", "NILAVADHANANANDA", ""},
		{"all filler", "<<<<<<<<<<", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			surname, given := decodeName(tc.field)
			if surname != tc.surname || given != tc.given {
				t.Errorf("decodeName(%q) = (%q, %q), want (%q, %q)",
					tc.field, surname, given, tc.surname, tc.given)
			}
		})
	}
}

func TestDecodeDate(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		pivot   int
		want    string
		wantErr bool
	}{
		{"last century", "740812", 50, "1974-08-12", false},
		{"this century", "120415", 50, "2012-04-15", false},
		{"exactly at pivot", "500101", 50, "1950-01-01", false},
		{"just below pivot", "491231", 50, "2049-12-31", false},
		{"custom pivot", "740812", 80, "2074-08-12", false},
		{"bad month", "741301", 50, "", true},
		{"bad day", "740832", 50, "", true},
		{"fillers", "<<<<<<", 50, "", true},
		{"too short", "7408", 50, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeDate(tc.input, tc.pivot)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("decodeDate(%q) expected error, got %q", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeDate(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("decodeDate(%q, %d) = %q, want %q", tc.input, tc.pivot, got, tc.want)
			}
		})
	}
}

func TestDecodeSex(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"M", "M", true},
		{"F", "F", true},
		{"<", "", true}, // unspecified is valid
		{"X", "", false},
		{"?", "", false},
	}
	for _, tc := range cases {
		got, ok := decodeSex(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Errorf("decodeSex(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestConfidenceScore(t *testing.T) {
	spec := FieldSpec{Name: "x", Kind: KindDocumentNumber}
	valid := DecodedField{Spec: spec, Status: StatusValid, CheckPassed: true}
	corrected := DecodedField{Spec: spec, Status: StatusCorrected, CheckPassed: true}
	failed := DecodedField{Spec: spec, Status: StatusFailed}

	// One field plus the composite unit.
	if got := confidenceScore([]DecodedField{valid}, true); got != 100 {
		t.Errorf("all valid score = %v, want 100", got)
	}
	if got := confidenceScore([]DecodedField{failed}, false); got != 0 {
		t.Errorf("all failed score = %v, want 0", got)
	}
	got := confidenceScore([]DecodedField{corrected}, true)
	if got <= 0 || got >= 100 {
		t.Errorf("corrected field score = %v, want strictly between 0 and 100", got)
	}
	// Corrections cost confidence relative to clean reads.
	if clean := confidenceScore([]DecodedField{valid}, true); got >= clean {
		t.Errorf("corrected score %v should be below clean score %v", got, clean)
	}
}
