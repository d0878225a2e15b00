// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordStatus marks whether every field of an assembled record is backed by
// a verified check digit.
type RecordStatus string

const (
	// RecordVerified means every present field's owning check digit validated,
	// directly or via correction.
	RecordVerified RecordStatus = "verified"

	// RecordDegraded means at least one field could not be verified. The
	// unverified fields are listed on the record; they are never silently
	// reported as valid.
	RecordDegraded RecordStatus = "degraded"
)

// IdentityRecord is the engine's structured output for a successfully (or
// partially) decoded document.
type IdentityRecord struct {
	DocumentType   string  `json:"document_type" yaml:"document_type"`
	IssuingState   string  `json:"issuing_state" yaml:"issuing_state"`
	Surname        string  `json:"surname" yaml:"surname"`
	GivenNames     string  `json:"given_names" yaml:"given_names"`
	DocumentNumber string  `json:"document_number" yaml:"document_number"`
	Nationality    string  `json:"nationality" yaml:"nationality"`
	BirthDate      string  `json:"birth_date" yaml:"birth_date"` // ISO 8601, empty when undecodable
	Sex            string  `json:"sex" yaml:"sex"`               // "M", "F" or "" for unspecified
	ExpiryDate     string  `json:"expiry_date" yaml:"expiry_date"`
	OptionalData   string  `json:"optional_data,omitempty" yaml:"optional_data,omitempty"`
	OptionalData2  string  `json:"optional_data_2,omitempty" yaml:"optional_data_2,omitempty"`
	Confidence     float64 `json:"confidence" yaml:"confidence"` // 0-100

	Status RecordStatus `json:"status" yaml:"status"`

	// Unverified lists the field names whose check digit did not validate.
	// Non-empty exactly when Status is RecordDegraded.
	Unverified []string `json:"unverified,omitempty" yaml:"unverified,omitempty"`
}

// decodeName splits an MRZ name field into surname and given names. The
// double filler separates the primary from the secondary identifier; single
// fillers inside either part are name separators and become spaces.
func decodeName(field string) (surname, given string) {
	trimmed := strings.TrimRight(field, string(Filler))
	parts := strings.SplitN(trimmed, "<<", 2)
	surname = strings.TrimSpace(strings.ReplaceAll(parts[0], string(Filler), " "))
	if len(parts) == 2 {
		given = strings.TrimSpace(strings.ReplaceAll(parts[1], string(Filler), " "))
	}
	return surname, given
}

// decodeDate expands a YYMMDD field into an ISO 8601 date using the pivot
// year rule: two-digit years >= pivot map to 19xx, the rest to 20xx. The
// pivot is reader policy, not part of the MRZ standard, which is why it is
// configurable rather than a literal.
func decodeDate(s string, pivot int) (string, error) {
	if len(s) != 6 {
		return "", fmt.Errorf("date field %q is not YYMMDD", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("date field %q contains a non-digit", s)
		}
	}
	yy, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	dd, _ := strconv.Atoi(s[4:6])
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return "", fmt.Errorf("date field %q out of range", s)
	}
	century := 2000
	if yy >= pivot {
		century = 1900
	}
	return fmt.Sprintf("%04d-%02d-%02d", century+yy, mm, dd), nil
}

// decodeSex maps the MRZ sex character. Filler means unspecified, which is
// valid per the standard and decodes to the empty string.
func decodeSex(s string) (string, bool) {
	switch s {
	case "M", "F":
		return s, true
	case string(Filler):
		return "", true
	default:
		return "", false
	}
}

// trimField strips trailing filler from a fixed-width field value.
func trimField(s string) string {
	return strings.TrimRight(s, string(Filler))
}

// assembleRecord converts the final field sequence into an IdentityRecord and
// applies the outcome decision rule. Invariant: a field appears in the record
// as verified only when its owning check digit validated, directly or via
// correction; anything else lands on the Unverified list and degrades the
// record status.
func (e *Engine) assembleRecord(st *decodeState) DecodeOutcome {
	outcome := DecodeOutcome{
		Format:         st.layout.Format,
		Fields:         fieldResults(st.fields),
		CompositeValid: st.compositeValid,
	}

	rec := &IdentityRecord{Status: RecordVerified}
	var unverified []string

	flag := func(name string) {
		unverified = append(unverified, name)
		rec.Status = RecordDegraded
	}

	for i := range st.fields {
		f := &st.fields[i]
		switch f.Spec.Kind {
		case KindDocumentCode:
			rec.DocumentType = trimField(f.Value)
		case KindCountry:
			v := trimField(f.Value)
			if f.Spec.Name == "issuing_state" {
				rec.IssuingState = v
			} else {
				rec.Nationality = v
			}
			if f.Status == StatusFailed {
				flag(f.Spec.Name)
			}
		case KindAlphaName:
			rec.Surname, rec.GivenNames = decodeName(f.Value)
			if f.Status == StatusFailed {
				flag(f.Spec.Name)
			}
		case KindDocumentNumber:
			rec.DocumentNumber = trimField(f.Value)
			if f.Status == StatusFailed || !f.CheckPassed {
				flag(f.Spec.Name)
			}
		case KindDate:
			iso := ""
			if f.Status != StatusFailed {
				var err error
				iso, err = decodeDate(f.Value, e.opts.PivotYear)
				if err != nil {
					flag(f.Spec.Name)
				} else if !f.CheckPassed {
					flag(f.Spec.Name)
				}
			} else {
				flag(f.Spec.Name)
			}
			if f.Spec.Name == "birth_date" {
				rec.BirthDate = iso
			} else {
				rec.ExpiryDate = iso
			}
		case KindSex:
			v, ok := decodeSex(f.Value)
			rec.Sex = v
			if !ok || f.Status == StatusFailed {
				flag(f.Spec.Name)
			}
		case KindOptionalData:
			v := trimField(f.Value)
			switch f.Spec.Name {
			case "optional_data_2":
				rec.OptionalData2 = v
			default:
				rec.OptionalData = v
			}
			if f.Status == StatusFailed || !f.CheckPassed {
				flag(f.Spec.Name)
			}
		}
	}

	if !st.compositeValid {
		flag("composite_check")
	}
	rec.Unverified = unverified
	rec.Confidence = confidenceScore(st.fields, st.compositeValid)

	// Decision rule. Critical: document number and the composite check.
	// Name fields must also hold for a partial result to be worth returning.
	docNumber := st.fieldByName("document_number")
	name := st.fieldByName("name")

	docOK := docNumber != nil && docNumber.Status != StatusFailed && docNumber.CheckPassed
	nameOK := name != nil && name.Status != StatusFailed

	if !docOK || !st.compositeValid {
		outcome.Outcome = OutcomeRejected
		outcome.Reason = rejectionReason(st, docNumber)
		return outcome
	}
	if !nameOK {
		outcome.Outcome = OutcomeRejected
		outcome.Reason = ReasonUnmappedCharacter
		return outcome
	}

	outcome.Record = rec
	outcome.Unverified = unverified
	if len(unverified) == 0 {
		outcome.Outcome = OutcomeSuccess
	} else {
		outcome.Outcome = OutcomePartialSuccess
	}
	return outcome
}

// rejectionReason picks the most specific taxonomy entry for a critical
// failure: budget exhaustion and unmapped characters are distinguishable
// sub-cases of a checksum that never validated.
func rejectionReason(st *decodeState, docNumber *DecodedField) string {
	if docNumber != nil && docNumber.Status == StatusFailed {
		switch docNumber.Reason {
		case ReasonUnmappedCharacter:
			return ReasonUnmappedCharacter
		case ReasonCorrectionBudgetExceeded:
			return ReasonCorrectionBudgetExceeded
		}
	}
	return ReasonChecksumFailure
}

// confidenceScore folds the per-field statuses into a 0-100 score. Corrected
// fields count at three quarters: the checksum vouches for them, but the
// original read did not.
func confidenceScore(fields []DecodedField, compositeValid bool) float64 {
	total, score := 0.0, 0.0
	for i := range fields {
		f := &fields[i]
		if f.Spec.Kind == KindCheckDigit || f.Spec.Kind == KindCompositeCheck {
			continue
		}
		total++
		switch {
		case f.Status == StatusValid && f.CheckPassed:
			score++
		case f.Status == StatusCorrected && f.CheckPassed:
			score += 0.75
		}
	}
	total++ // composite counts as one more verifiable unit
	if compositeValid {
		score++
	}
	if total == 0 {
		return 0
	}
	return score / total * 100
}
