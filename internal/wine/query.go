// Package wine turns free-text wine queries into a cleaned name and an
// optional vintage year.
package wine

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidInput is returned when the wine name is empty after trimming.
var ErrInvalidInput = errors.New("wine name is required")

// vintagePattern matches a standalone year in 1900-2100, optionally preceded
// or followed by the word "vintage".
var vintagePattern = regexp.MustCompile(`(?i)\b(?:vintage\s+)?(19\d{2}|20\d{2}|2100)\b(?:\s+vintage\b)?`)

// Query is a normalized wine query.
type Query struct {
	RawInput string `json:"raw_input"`
	Name     string `json:"wine"`
	Vintage  *int   `json:"vintage"`
}

// Normalize trims name and resolves the vintage. An explicit vintage is used
// as given; otherwise the leftmost year in the name is extracted and removed.
func Normalize(name string, explicitVintage *int) (Query, error) {
	trimmed := strings.TrimSpace(norm.NFC.String(name))
	if trimmed == "" {
		return Query{}, ErrInvalidInput
	}

	q := Query{RawInput: name, Name: trimmed}

	if explicitVintage != nil {
		v := *explicitVintage
		q.Vintage = &v
		return q, nil
	}

	loc := vintagePattern.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return q, nil
	}

	year, err := strconv.Atoi(trimmed[loc[2]:loc[3]])
	if err != nil {
		return q, nil
	}
	q.Vintage = &year

	if cleaned := cleanName(trimmed[:loc[0]] + " " + trimmed[loc[1]:]); cleaned != "" {
		q.Name = cleaned
	}
	return q, nil
}

func cleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, ",.- ")
}
