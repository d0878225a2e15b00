// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ICAO 9303 part 4 specimen passport (Utopia, Anna Maria Eriksson).
var specimenTD3 = []string{
	"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
	"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
}

func toCandidates(lines []string) []CandidateLine {
	out := make([]CandidateLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, CandidateLine{Text: l})
	}
	return out
}

// uniformConfidence builds a full-confidence annotation for a line with the
// given positions marked uncertain.
func uniformConfidence(width int, uncertain map[int]float64) []float64 {
	out := make([]float64, width)
	for i := range out {
		out[i] = 1.0
	}
	for pos, c := range uncertain {
		out[pos] = c
	}
	return out
}

func fieldResult(t *testing.T, out DecodeOutcome, name string) FieldResult {
	t.Helper()
	for _, f := range out.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no field %q in outcome", name)
	return FieldResult{}
}

func TestDecode_SpecimenPassport(t *testing.T) {
	e := NewEngine(DefaultOptions())
	out := e.Decode(toCandidates(specimenTD3))

	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.NotNil(t, out.Record)
	assert.Equal(t, "TD3", out.FormatName)
	assert.True(t, out.CompositeValid)
	assert.Empty(t, out.Unverified)

	rec := out.Record
	assert.Equal(t, "P", rec.DocumentType)
	assert.Equal(t, "UTO", rec.IssuingState)
	assert.Equal(t, "ERIKSSON", rec.Surname)
	assert.Equal(t, "ANNA MARIA", rec.GivenNames)
	assert.Equal(t, "L898902C3", rec.DocumentNumber)
	assert.Equal(t, "UTO", rec.Nationality)
	assert.Equal(t, "1974-08-12", rec.BirthDate)
	assert.Equal(t, "F", rec.Sex)
	assert.Equal(t, "2012-04-15", rec.ExpiryDate)
	assert.Equal(t, "ZE184226B", rec.OptionalData)
	assert.Equal(t, RecordVerified, rec.Status)
	assert.Equal(t, 100.0, rec.Confidence)
}

func TestDecode_TrimsLineBoundaryWhitespace(t *testing.T) {
	e := NewEngine(DefaultOptions())
	out := e.Decode([]CandidateLine{
		{Text: "  " + specimenTD3[0] + "\t"},
		{Text: specimenTD3[1] + "  "},
	})
	require.Equal(t, OutcomeSuccess, out.Outcome)
}

func TestDecode_SingleConfusionRecovered(t *testing.T) {
	// Document number misread: '0' seen as 'O' at column 5. The check digit
	// pins down the unique in-budget repair.
	corrupted := []string{
		specimenTD3[0],
		"L8989O2C36UTO7408122F1204159ZE184226B<<<<<10",
	}

	e := NewEngine(DefaultOptions())
	out := e.Decode(toCandidates(corrupted))

	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.NotNil(t, out.Record)
	assert.Equal(t, "L898902C3", out.Record.DocumentNumber)
	assert.True(t, out.CompositeValid)

	f := fieldResult(t, out, "document_number")
	assert.Equal(t, "corrected", f.Status)
	assert.Equal(t, "L8989O2C3", f.CorrectedFrom)
	assert.Equal(t, "L898902C3", f.Value)
	assert.True(t, f.CheckPassed)

	// Corrections cost confidence.
	assert.Less(t, out.Record.Confidence, 100.0)
	assert.Greater(t, out.Record.Confidence, 0.0)
}

func TestDecode_MutatedCheckedDigitRejected(t *testing.T) {
	// '2' mutated to '3' inside the document number. No confusion-set
	// substitution can reproduce the declared check digit, so the engine must
	// reject rather than invent a passing value.
	mutated := []string{
		specimenTD3[0],
		"L898903C36UTO7408122F1204159ZE184226B<<<<<10",
	}

	e := NewEngine(DefaultOptions())
	out := e.Decode(toCandidates(mutated))

	require.Equal(t, OutcomeRejected, out.Outcome)
	assert.Nil(t, out.Record)
	assert.Equal(t, ReasonChecksumFailure, out.Reason)
	assert.False(t, out.CompositeValid)

	f := fieldResult(t, out, "document_number")
	assert.Equal(t, "failed", f.Status)
	assert.False(t, f.CheckPassed)
}

func TestDecode_TwoEditRecoveryNeedsUncertainty(t *testing.T) {
	// Two misreads in one field: '8' as 'B' at column 1 and '0' as 'O' at
	// column 5. A pair repair is only attempted over positions the OCR itself
	// marked uncertain.
	corruptedLine2 := "LB989O2C36UTO7408122F1204159ZE184226B<<<<<10"
	uncertain := uniformConfidence(44, map[int]float64{1: 0.4, 5: 0.4})

	e := NewEngine(DefaultOptions())

	out := e.Decode([]CandidateLine{
		{Text: specimenTD3[0]},
		{Text: corruptedLine2, Confidence: uncertain},
	})
	require.Equal(t, OutcomeSuccess, out.Outcome)
	require.NotNil(t, out.Record)
	assert.Equal(t, "L898902C3", out.Record.DocumentNumber)
	f := fieldResult(t, out, "document_number")
	assert.Equal(t, "LB989O2C3", f.CorrectedFrom)

	// Without the uncertainty annotations the same input must not be
	// "repaired": full-confidence positions are off limits for pair edits.
	out = e.Decode([]CandidateLine{
		{Text: specimenTD3[0]},
		{Text: corruptedLine2},
	})
	require.Equal(t, OutcomeRejected, out.Outcome)
}

func TestDecode_BudgetExhausted(t *testing.T) {
	// Same double misread, but a budget of one. The field stays failed and the
	// reason names the exhausted budget, not a generic checksum failure.
	opts := DefaultOptions()
	opts.CorrectionBudget = 1
	e := NewEngine(opts)

	out := e.Decode([]CandidateLine{
		{Text: specimenTD3[0]},
		{Text: "LB989O2C36UTO7408122F1204159ZE184226B<<<<<10",
			Confidence: uniformConfidence(44, map[int]float64{1: 0.4, 5: 0.4})},
	})

	require.Equal(t, OutcomeRejected, out.Outcome)
	assert.Equal(t, ReasonCorrectionBudgetExceeded, out.Reason)
	f := fieldResult(t, out, "document_number")
	assert.Equal(t, ReasonCorrectionBudgetExceeded, f.Reason)
}

func TestDecode_AttemptCapIsPerField(t *testing.T) {
	// Two misread fields in one document: '0' seen as 'O' in the document
	// number (column 5) and in the birth date (column 15). The document number
	// repair needs exactly three checksum evaluations with the default
	// confusion table, so a cap of three leaves nothing over if the counter is
	// shared. Each field's search must get its own cap.
	opts := DefaultOptions()
	opts.MaxAttempts = 3
	e := NewEngine(opts)

	out := e.Decode(toCandidates([]string{
		specimenTD3[0],
		"L8989O2C36UTO74O8122F1204159ZE184226B<<<<<10",
	}))

	require.Equal(t, OutcomeSuccess, out.Outcome, "fields: %+v", out.Fields)
	require.NotNil(t, out.Record)
	assert.Equal(t, "L898902C3", out.Record.DocumentNumber)
	assert.Equal(t, "1974-08-12", out.Record.BirthDate)
	assert.Equal(t, "corrected", fieldResult(t, out, "document_number").Status)
	assert.Equal(t, "corrected", fieldResult(t, out, "birth_date").Status)
	assert.True(t, out.CompositeValid)
}

func TestDecode_UnmappedSexIsPartial(t *testing.T) {
	// An unmapped character in a non-critical field degrades the record
	// instead of rejecting it. The sex column sits outside the composite
	// spans, so the composite still verifies.
	lines := []string{
		specimenTD3[0],
		"L898902C36UTO7408122?1204159ZE184226B<<<<<10",
	}

	e := NewEngine(DefaultOptions())
	out := e.Decode(toCandidates(lines))

	require.Equal(t, OutcomePartialSuccess, out.Outcome)
	require.NotNil(t, out.Record)
	assert.Equal(t, []string{"sex"}, out.Unverified)
	assert.Equal(t, RecordDegraded, out.Record.Status)
	assert.Equal(t, "", out.Record.Sex)
	assert.True(t, out.CompositeValid)
	assert.Equal(t, "L898902C3", out.Record.DocumentNumber)
}

func TestDecode_UnmappedDocumentNumberRejected(t *testing.T) {
	lines := []string{
		specimenTD3[0],
		"L8989?2C36UTO7408122F1204159ZE184226B<<<<<10",
	}

	e := NewEngine(DefaultOptions())
	out := e.Decode(toCandidates(lines))

	require.Equal(t, OutcomeRejected, out.Outcome)
	assert.Equal(t, ReasonUnmappedCharacter, out.Reason)
	f := fieldResult(t, out, "document_number")
	assert.Equal(t, "failed", f.Status)
	assert.Equal(t, ReasonUnmappedCharacter, f.Reason)
}

func TestDecode_NoFormatMatch(t *testing.T) {
	e := NewEngine(DefaultOptions())
	cases := [][]CandidateLine{
		nil,
		{{Text: "P<UTO"}},
		{{Text: specimenTD3[0]}},
		{{Text: specimenTD3[0]}, {Text: "L898902C36UTO"}},
	}
	for _, c := range cases {
		out := e.Decode(c)
		require.Equal(t, OutcomeRejected, out.Outcome)
		assert.Equal(t, ReasonNoFormatMatch, out.Reason)
		assert.Nil(t, out.Record)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	// Same input, same outcome, including the correction path.
	input := []CandidateLine{
		{Text: specimenTD3[0]},
		{Text: "L8989O2C36UTO7408122F1204159ZE184226B<<<<<10"},
	}
	e := NewEngine(DefaultOptions())
	first := e.Decode(input)
	second := e.Decode(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("decode is not deterministic:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestEncode_SpecimenRoundTrip(t *testing.T) {
	rec := IdentityRecord{
		DocumentType:   "P",
		IssuingState:   "UTO",
		Surname:        "ERIKSSON",
		GivenNames:     "ANNA MARIA",
		DocumentNumber: "L898902C3",
		Nationality:    "UTO",
		BirthDate:      "1974-08-12",
		Sex:            "F",
		ExpiryDate:     "2012-04-15",
		OptionalData:   "ZE184226B",
	}

	lines, err := Encode(TD3, rec)
	require.NoError(t, err)
	require.Equal(t, specimenTD3, lines)
}

func TestEncode_DecodeRoundTrip(t *testing.T) {
	rec := IdentityRecord{
		DocumentType:   "I",
		IssuingState:   "UTO",
		Surname:        "ERIKSSON",
		GivenNames:     "ANNA MARIA",
		DocumentNumber: "D23145890",
		Nationality:    "UTO",
		BirthDate:      "1974-08-12",
		Sex:            "F",
		ExpiryDate:     "2012-04-15",
		OptionalData:   "7349",
	}

	e := NewEngine(DefaultOptions())
	for _, format := range []Format{TD1, TD2, TD3} {
		t.Run(format.String(), func(t *testing.T) {
			lines, err := Encode(format, rec)
			require.NoError(t, err)

			out := e.Decode(toCandidates(lines))
			require.Equal(t, OutcomeSuccess, out.Outcome, "fields: %+v", out.Fields)
			require.NotNil(t, out.Record)

			got := out.Record
			assert.Equal(t, rec.Surname, got.Surname)
			assert.Equal(t, rec.GivenNames, got.GivenNames)
			assert.Equal(t, rec.DocumentNumber, got.DocumentNumber)
			assert.Equal(t, rec.Nationality, got.Nationality)
			assert.Equal(t, rec.BirthDate, got.BirthDate)
			assert.Equal(t, rec.Sex, got.Sex)
			assert.Equal(t, rec.ExpiryDate, got.ExpiryDate)
			assert.Equal(t, rec.OptionalData, got.OptionalData)
		})
	}
}

func TestEncode_FieldOverflow(t *testing.T) {
	rec := IdentityRecord{
		DocumentType:   "P",
		IssuingState:   "UTO",
		Surname:        "ERIKSSON",
		DocumentNumber: "THISNUMBERISTOOLONG",
		Nationality:    "UTO",
	}
	_, err := Encode(TD3, rec)
	require.Error(t, err)
}
