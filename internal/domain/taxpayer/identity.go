package taxpayer

import "strings"

// IDType is the kind of registration number a record carries
type IDType string

const (
	IDTypeNTN  IDType = "ntn"
	IDTypeCNIC IDType = "cnic"
)

// legacyNTNMaxLen is the longest identifier still treated as an NTN when it
// shows up in a CNIC column.
const legacyNTNMaxLen = 8

// InferIDType decides whether an identifier is an NTN or a CNIC.
//
// Companies and AOPs always carry NTNs. Individuals carry NTNs in 2013 and
// CNICs afterwards, except that short values (8 characters or fewer) found in
// later years are legacy NTNs. The length rule is a structural guess kept for
// output parity; it cannot tell a truncated CNIC from a real NTN.
func InferIDType(year int, category Category, id string) IDType {
	switch {
	case category.IsNTNKeyed():
		return IDTypeNTN
	case year == firstYear && category == CategoryIndividual:
		return IDTypeNTN
	case len(id) <= legacyNTNMaxLen:
		return IDTypeNTN
	default:
		return IDTypeCNIC
	}
}

// NTN7 returns the 7-character NTN prefix identifying the same legal entity
// across years, or nil for CNIC-typed identifiers.
func NTN7(idType IDType, id string) *string {
	if idType != IDTypeNTN {
		return nil
	}
	prefix := LeftN(id, NTN7Width)
	return &prefix
}

// LeftN returns the first n characters of s
func LeftN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// PadIdentifier left-pads an identifier with zeros to the given width so that
// lexicographic and numeric order agree. Longer values are cut to width,
// keeping the leading digits.
func PadIdentifier(id string, width int) string {
	id = strings.TrimSpace(id)
	if len(id) > width {
		return id[:width]
	}
	return strings.Repeat("0", width-len(id)) + id
}
