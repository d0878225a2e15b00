// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode renders an IdentityRecord into MRZ lines for the given format, with
// all check digits computed. The inverse of Decode for clean input: decoding
// the result yields the same record with every field valid.
//
// Dates must be ISO 8601 (as Decode produces); names and codes are upper-cased
// and padded with filler. Returns an error when a value cannot be represented
// in the target layout, which makes it suitable both for synthesizing test
// documents and for the CLI's --synthesize mode.
func Encode(format Format, rec IdentityRecord) ([]string, error) {
	layout, ok := LayoutFor(format)
	if !ok {
		return nil, fmt.Errorf("mrz: no layout for format %v", format)
	}

	lines := make([][]byte, layout.Lines)
	for i := range lines {
		lines[i] = []byte(strings.Repeat(string(Filler), layout.Width))
	}

	place := func(name, value string) error {
		spec, ok := layout.Field(name)
		if !ok {
			return nil // field not present in this layout
		}
		encoded := encodeField(value)
		if len(encoded) > spec.Length {
			return fmt.Errorf("mrz: value %q overflows field %s (%d > %d)", value, name, len(encoded), spec.Length)
		}
		copy(lines[spec.Line][spec.Start:spec.End()], encoded)
		return nil
	}

	name := encodeField(rec.Surname)
	if rec.GivenNames != "" {
		name += "<<" + encodeField(rec.GivenNames)
	}

	sex := rec.Sex
	if sex == "" {
		sex = string(Filler)
	}

	birth, err := encodeDate(rec.BirthDate)
	if err != nil {
		return nil, err
	}
	expiry, err := encodeDate(rec.ExpiryDate)
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		"document_code":   rec.DocumentType,
		"issuing_state":   rec.IssuingState,
		"name":            name,
		"document_number": rec.DocumentNumber,
		"nationality":     rec.Nationality,
		"birth_date":      birth,
		"expiry_date":     expiry,
		"sex":             sex,
		"personal_number": rec.OptionalData,
		"optional_data":   rec.OptionalData,
		"optional_data_1": rec.OptionalData,
		"optional_data_2": rec.OptionalData2,
	}
	for fieldName, value := range values {
		if err := place(fieldName, value); err != nil {
			return nil, err
		}
	}

	// Per-field check digits over the padded spans.
	for _, spec := range layout.Fields {
		if spec.Kind != KindCheckDigit {
			continue
		}
		target, _ := layout.Field(spec.Over)
		span := string(lines[target.Line][target.Start:target.End()])
		lines[spec.Line][spec.Start] = byte('0' + CheckDigit(span))
	}

	// Composite last: its spans include the per-field digits.
	for _, spec := range layout.Fields {
		if spec.Kind != KindCompositeCheck {
			continue
		}
		var span strings.Builder
		for _, s := range layout.Composite {
			span.Write(lines[s.Line][s.Start:s.End])
		}
		lines[spec.Line][spec.Start] = byte('0' + CheckDigit(span.String()))
	}

	out := make([]string, layout.Lines)
	for i := range lines {
		out[i] = string(lines[i])
	}
	return out, nil
}

// encodeField upper-cases a value and replaces spaces with filler.
func encodeField(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), " ", string(Filler))
}

// encodeDate converts an ISO 8601 date back into YYMMDD. An empty date
// encodes as six fillers.
func encodeDate(iso string) (string, error) {
	if iso == "" {
		return strings.Repeat(string(Filler), 6), nil
	}
	parts := strings.SplitN(iso, "-", 3)
	if len(parts) != 3 {
		return "", fmt.Errorf("mrz: date %q is not ISO 8601", iso)
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return "", fmt.Errorf("mrz: date %q is not a valid ISO 8601 date", iso)
	}
	return fmt.Sprintf("%02d%02d%02d", y%100, m, d), nil
}
