package catalog

import "strings"

// MatchThreshold is the minimum overlap score for a row to count as a match.
const MatchThreshold = 0.4

// Search returns the catalog row whose name best overlaps queryName, or nil
// when nothing scores at least MatchThreshold.
//
// The score is |Q ∩ R| / max(|Q|, |R|) over lower-cased alphanumeric token
// sets. Dividing by the larger set instead of the union favors rows that
// contain, or are contained in, the query. Only a strictly greater score
// replaces the current best, so ties go to the earliest row.
func Search(c *Catalog, queryName string) *Match {
	if c.Len() == 0 {
		return nil
	}

	query := uniqueTokens(queryName)
	if len(query) == 0 {
		return nil
	}
	querySet := make(map[string]struct{}, len(query))
	for _, tok := range query {
		querySet[tok] = struct{}{}
	}

	best := -1
	bestScore := 0.0

	for i, rowTokens := range c.tokens {
		if c.records[i].WineName == "" || len(rowTokens) == 0 {
			continue
		}

		overlap := 0
		for _, tok := range rowTokens {
			if _, ok := querySet[tok]; ok {
				overlap++
			}
		}

		score := float64(overlap) / float64(max(len(querySet), len(rowTokens)))
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 || bestScore < MatchThreshold {
		return nil
	}

	rec := c.records[best]
	if rec.WineName == "" {
		rec.WineName = queryName
	}
	return &Match{Record: rec, Score: bestScore}
}

// Tokenize lower-cases text and splits it into maximal runs of ASCII letters
// and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func uniqueTokens(text string) []string {
	toks := Tokenize(text)
	seen := make(map[string]struct{}, len(toks))
	out := toks[:0]
	for _, t := range toks {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
