// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mrz

// Filler is the padding/separator character used throughout the MRZ.
const Filler = '<'

// charValue maps an MRZ character to its ICAO 9303 numeric value:
// digits map to themselves, letters to alphabet position + 10, filler to 0.
// Returns -1 for any character outside the MRZ alphabet.
func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c == Filler:
		return 0
	default:
		return -1
	}
}

// isMRZChar reports whether c belongs to the restricted MRZ alphabet {A-Z, 0-9, '<'}.
func isMRZChar(c byte) bool {
	return charValue(c) >= 0
}

// confusionTable lists plausible alternative readings for each MRZ character,
// ordered by how frequently OCR engines confuse the pair. The table is
// symmetric (if OCR may read 'O' as '0', it may equally read '0' as 'O') and
// deliberately restricted to the canonical glyph-shape pairs: every entry
// widens the correction search space, and a loose table lets the search
// invent field values that happen to satisfy a mod-10 check.
//
// Process-wide immutable configuration. Never mutated after init.
var confusionTable = map[byte]string{
	'0': "O",
	'O': "0",
	'1': "I",
	'I': "1",
	'2': "Z",
	'Z': "2",
	'5': "S",
	'S': "5",
	'8': "B",
	'B': "8",
	'6': "G",
	'G': "6",
}

// rawMappings converts characters that fall outside the MRZ alphabet but have
// a single unambiguous reading into their canonical MRZ form. Lowercase
// letters are handled separately by case folding.
var rawMappings = map[rune]byte{
	'«': Filler,
	'‹': Filler,
	' ': Filler, // interior spaces only; line-boundary whitespace is trimmed upstream
}

// confusionsFor returns the ordered alternative readings for an MRZ character,
// or "" when the character has no known confusions.
func confusionsFor(c byte) string {
	return confusionTable[c]
}
