package cleanse

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NotAvailable replaces codes that no vocabulary maps.
const NotAvailable = "n/a"

// trim strips surrounding whitespace and normalizes to NFC.
func trim(s *string) *string {
	if s == nil {
		return nil
	}
	t := norm.NFC.String(strings.TrimSpace(*s))
	return &t
}

// fold returns the trimmed, case-folded form used as a vocabulary key.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// vocabulary maps source codes to standardized labels.
// Keys are matched after trimming and case folding.
type vocabulary map[string]string

func newVocabulary(pairs map[string]string) vocabulary {
	v := make(vocabulary, len(pairs))
	for code, label := range pairs {
		v[fold(code)] = label
	}
	return v
}

// label maps a raw code, returning NotAvailable for null, blank or unknown codes.
func (v vocabulary) label(code *string) string {
	if code == nil {
		return NotAvailable
	}
	if l, ok := v[fold(*code)]; ok {
		return l
	}
	return NotAvailable
}

var (
	maritalStatuses = newVocabulary(map[string]string{
		"S": "Single",
		"M": "Married",
	})
	customerGenders = newVocabulary(map[string]string{
		"F": "Female",
		"M": "Male",
	})
	productLines = newVocabulary(map[string]string{
		"M": "Mountain",
		"R": "Road",
		"S": "Other Sales",
		"T": "Touring",
	})
	demographicGenders = newVocabulary(map[string]string{
		"F":      "Female",
		"FEMALE": "Female",
		"M":      "Male",
		"MALE":   "Male",
	})
	countries = newVocabulary(map[string]string{
		"DE":  "Germany",
		"US":  "United States",
		"USA": "United States",
	})
)
