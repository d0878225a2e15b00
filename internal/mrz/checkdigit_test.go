// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import "testing"

func TestCheckDigit(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{"specimen document number", "L898902C3", 6},
		{"specimen birth date", "740812", 2},
		{"specimen expiry date", "120415", 9},
		{"specimen personal number", "ZE184226B<<<<<", 1},
		{"all filler", "<<<<<<", 0},
		{"empty span", "", 0},
		{"single digit", "7", 9}, // 7*7=49
		{"letters only", "AB", 103 % 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CheckDigit(tc.input); got != tc.want {
				t.Errorf("CheckDigit(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestCheckDigit_InvalidCharacter(t *testing.T) {
	for _, input := range []string{"L8989?2C3", "74 812", "abc"} {
		if got := CheckDigit(input); got != -1 {
			t.Errorf("CheckDigit(%q) = %d, want -1 for non-MRZ character", input, got)
		}
	}
}

func TestDigitMatches_FillerCheckDigit(t *testing.T) {
	// A filler in the check position only counts as zero when the whole
	// checked span is filler (empty optional field).
	if !digitMatches('<', 0, "<<<<<<<<<<<<<<") {
		t.Error("filler check digit should match an all-filler span")
	}
	if digitMatches('<', 0, "AB<<<<<<<<<<<<") {
		t.Error("filler check digit must not match a populated span")
	}
}

func TestCharValue(t *testing.T) {
	cases := []struct {
		c    byte
		want int
	}{
		{'0', 0}, {'9', 9}, {'A', 10}, {'Z', 35}, {'<', 0},
		{'?', -1}, {' ', -1}, {'a', -1},
	}
	for _, tc := range cases {
		if got := charValue(tc.c); got != tc.want {
			t.Errorf("charValue(%q) = %d, want %d", tc.c, got, tc.want)
		}
	}
}
