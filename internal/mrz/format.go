// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

import "fmt"

// Format identifies an ICAO 9303 document layout class.
type Format int

const (
	FormatUnknown Format = iota
	TD1                  // 3 lines x 30 characters (ID cards)
	TD2                  // 2 lines x 36 characters (older ID / visa formats)
	TD3                  // 2 lines x 44 characters (passports)
)

func (f Format) String() string {
	switch f {
	case TD1:
		return "TD1"
	case TD2:
		return "TD2"
	case TD3:
		return "TD3"
	default:
		return "unknown"
	}
}

// ParseFormat converts a layout name ("TD1", "td2", ...) into a Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "TD1", "td1":
		return TD1, true
	case "TD2", "td2":
		return TD2, true
	case "TD3", "td3":
		return TD3, true
	default:
		return FormatUnknown, false
	}
}

// DefaultFormatPriority is the order in which layouts are tried during
// detection: most common document class first. Deployments that mostly see ID
// cards can reorder this through configuration.
var DefaultFormatPriority = []Format{TD3, TD2, TD1}

// FieldKind describes the semantic type of a fixed-width MRZ field.
type FieldKind int

const (
	KindDocumentCode FieldKind = iota
	KindCountry                // nationality or issuing state, 3-letter code
	KindAlphaName
	KindDocumentNumber
	KindDate // YYMMDD
	KindSex
	KindOptionalData
	KindCheckDigit
	KindCompositeCheck
)

// FieldSpec names one fixed-width column of an MRZ layout. Immutable, defined
// statically per format.
type FieldSpec struct {
	Name   string
	Line   int // 0-based line within the layout
	Start  int // 0-based column offset
	Length int
	Kind   FieldKind

	// Over names the field a KindCheckDigit entry protects. Empty otherwise.
	Over string
}

// End returns the exclusive end offset of the field within its line.
func (s FieldSpec) End() int { return s.Start + s.Length }

// Span is a half-open [Start,End) column range on one line, used to describe
// the character runs covered by the composite check digit.
type Span struct {
	Line  int
	Start int
	End   int
}

// Layout carries the full static column specification for one format.
type Layout struct {
	Format Format
	Lines  int
	Width  int
	Fields []FieldSpec

	// Composite lists the spans whose concatenation the composite check digit
	// is computed over. The spans include the per-field check digits, which is
	// what lets the composite catch cross-field corruption that every
	// individual check misses.
	Composite []Span
}

// Field looks up a FieldSpec by name.
func (l Layout) Field(name string) (FieldSpec, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// td3Layout is the passport layout: 2 lines of 44 characters.
var td3Layout = Layout{
	Format: TD3,
	Lines:  2,
	Width:  44,
	Fields: []FieldSpec{
		{Name: "document_code", Line: 0, Start: 0, Length: 2, Kind: KindDocumentCode},
		{Name: "issuing_state", Line: 0, Start: 2, Length: 3, Kind: KindCountry},
		{Name: "name", Line: 0, Start: 5, Length: 39, Kind: KindAlphaName},
		{Name: "document_number", Line: 1, Start: 0, Length: 9, Kind: KindDocumentNumber},
		{Name: "document_number_check", Line: 1, Start: 9, Length: 1, Kind: KindCheckDigit, Over: "document_number"},
		{Name: "nationality", Line: 1, Start: 10, Length: 3, Kind: KindCountry},
		{Name: "birth_date", Line: 1, Start: 13, Length: 6, Kind: KindDate},
		{Name: "birth_date_check", Line: 1, Start: 19, Length: 1, Kind: KindCheckDigit, Over: "birth_date"},
		{Name: "sex", Line: 1, Start: 20, Length: 1, Kind: KindSex},
		{Name: "expiry_date", Line: 1, Start: 21, Length: 6, Kind: KindDate},
		{Name: "expiry_date_check", Line: 1, Start: 27, Length: 1, Kind: KindCheckDigit, Over: "expiry_date"},
		{Name: "personal_number", Line: 1, Start: 28, Length: 14, Kind: KindOptionalData},
		{Name: "personal_number_check", Line: 1, Start: 42, Length: 1, Kind: KindCheckDigit, Over: "personal_number"},
		{Name: "composite_check", Line: 1, Start: 43, Length: 1, Kind: KindCompositeCheck},
	},
	Composite: []Span{
		{Line: 1, Start: 0, End: 10},
		{Line: 1, Start: 13, End: 20},
		{Line: 1, Start: 21, End: 43},
	},
}

// td2Layout covers the 2x36 layout used by older ID cards and some visas.
var td2Layout = Layout{
	Format: TD2,
	Lines:  2,
	Width:  36,
	Fields: []FieldSpec{
		{Name: "document_code", Line: 0, Start: 0, Length: 2, Kind: KindDocumentCode},
		{Name: "issuing_state", Line: 0, Start: 2, Length: 3, Kind: KindCountry},
		{Name: "name", Line: 0, Start: 5, Length: 31, Kind: KindAlphaName},
		{Name: "document_number", Line: 1, Start: 0, Length: 9, Kind: KindDocumentNumber},
		{Name: "document_number_check", Line: 1, Start: 9, Length: 1, Kind: KindCheckDigit, Over: "document_number"},
		{Name: "nationality", Line: 1, Start: 10, Length: 3, Kind: KindCountry},
		{Name: "birth_date", Line: 1, Start: 13, Length: 6, Kind: KindDate},
		{Name: "birth_date_check", Line: 1, Start: 19, Length: 1, Kind: KindCheckDigit, Over: "birth_date"},
		{Name: "sex", Line: 1, Start: 20, Length: 1, Kind: KindSex},
		{Name: "expiry_date", Line: 1, Start: 21, Length: 6, Kind: KindDate},
		{Name: "expiry_date_check", Line: 1, Start: 27, Length: 1, Kind: KindCheckDigit, Over: "expiry_date"},
		{Name: "optional_data", Line: 1, Start: 28, Length: 7, Kind: KindOptionalData},
		{Name: "composite_check", Line: 1, Start: 35, Length: 1, Kind: KindCompositeCheck},
	},
	Composite: []Span{
		{Line: 1, Start: 0, End: 10},
		{Line: 1, Start: 13, End: 20},
		{Line: 1, Start: 21, End: 35},
	},
}

// td1Layout covers the 3x30 ID card layout.
var td1Layout = Layout{
	Format: TD1,
	Lines:  3,
	Width:  30,
	Fields: []FieldSpec{
		{Name: "document_code", Line: 0, Start: 0, Length: 2, Kind: KindDocumentCode},
		{Name: "issuing_state", Line: 0, Start: 2, Length: 3, Kind: KindCountry},
		{Name: "document_number", Line: 0, Start: 5, Length: 9, Kind: KindDocumentNumber},
		{Name: "document_number_check", Line: 0, Start: 14, Length: 1, Kind: KindCheckDigit, Over: "document_number"},
		{Name: "optional_data_1", Line: 0, Start: 15, Length: 15, Kind: KindOptionalData},
		{Name: "birth_date", Line: 1, Start: 0, Length: 6, Kind: KindDate},
		{Name: "birth_date_check", Line: 1, Start: 6, Length: 1, Kind: KindCheckDigit, Over: "birth_date"},
		{Name: "sex", Line: 1, Start: 7, Length: 1, Kind: KindSex},
		{Name: "expiry_date", Line: 1, Start: 8, Length: 6, Kind: KindDate},
		{Name: "expiry_date_check", Line: 1, Start: 14, Length: 1, Kind: KindCheckDigit, Over: "expiry_date"},
		{Name: "nationality", Line: 1, Start: 15, Length: 3, Kind: KindCountry},
		{Name: "optional_data_2", Line: 1, Start: 18, Length: 11, Kind: KindOptionalData},
		{Name: "composite_check", Line: 1, Start: 29, Length: 1, Kind: KindCompositeCheck},
		{Name: "name", Line: 2, Start: 0, Length: 30, Kind: KindAlphaName},
	},
	Composite: []Span{
		{Line: 0, Start: 5, End: 30},
		{Line: 1, Start: 0, End: 7},
		{Line: 1, Start: 8, End: 15},
		{Line: 1, Start: 18, End: 29},
	},
}

var layouts = map[Format]Layout{
	TD1: td1Layout,
	TD2: td2Layout,
	TD3: td3Layout,
}

// LayoutFor returns the static layout for a format.
func LayoutFor(f Format) (Layout, bool) {
	l, ok := layouts[f]
	return l, ok
}

// DetectFormat matches a normalized candidate line set against the known
// layouts in priority order, returning the first layout whose line count and
// per-line width match exactly. Ties resolve purely by priority order; no
// content heuristics are applied.
func DetectFormat(lines []NormalizedLine, priority []Format) (Layout, bool) {
	if len(priority) == 0 {
		priority = DefaultFormatPriority
	}
	for _, f := range priority {
		layout, ok := layouts[f]
		if !ok || layout.Lines != len(lines) {
			continue
		}
		match := true
		for _, l := range lines {
			if len([]rune(l.Text)) != layout.Width {
				match = false
				break
			}
		}
		if match {
			return layout, true
		}
	}
	return Layout{}, false
}

// validate aborts loudly on a malformed layout table. A failure here is a
// static table bug, not bad input.
func (l Layout) validate() {
	for _, f := range l.Fields {
		if f.Line < 0 || f.Line >= l.Lines || f.Start < 0 || f.End() > l.Width || f.Length <= 0 {
			panic(fmt.Sprintf("mrz: layout %s field %q out of range", l.Format, f.Name))
		}
		if f.Kind == KindCheckDigit {
			if _, ok := l.Field(f.Over); !ok {
				panic(fmt.Sprintf("mrz: layout %s check digit %q covers unknown field %q", l.Format, f.Name, f.Over))
			}
		}
	}
	for _, s := range l.Composite {
		if s.Line < 0 || s.Line >= l.Lines || s.Start < 0 || s.End > l.Width || s.Start >= s.End {
			panic(fmt.Sprintf("mrz: layout %s composite span out of range", l.Format))
		}
	}
}

func init() {
	for _, l := range layouts {
		l.validate()
	}
}
