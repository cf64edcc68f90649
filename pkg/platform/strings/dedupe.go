// Package strings provides name normalisation helpers shared by the roster
// loaders and the sheet downloader.
package strings

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a display name, collapses inner runs of whitespace and
// converts it to Unicode NFC so that "Niccolò" typed on different keyboards
// compares equal.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return norm.NFC.String(strings.Join(fields, " "))
}

// DedupeNames normalises every value, drops empty ones and removes
// duplicates. Order is preserved.
//
// Example:
//
//	DedupeNames([]string{"  Pippo  Baudo ", "Pippo Baudo", ""})
//	// Returns: []string{"Pippo Baudo"}
func DedupeNames(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		name := NormalizeName(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}

	return result
}

// FoldKey case-folds and normalises a value for case-insensitive joins.
func FoldKey(value string) string {
	return cases.Fold().String(NormalizeName(value))
}
