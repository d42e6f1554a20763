// utils/similarity.go
package utils

import "strings"

// Levenshtein returns the edit distance between two strings.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				curr[j-1]+1,
				prev[j]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// SimilarCompanyName reports whether two company names are close enough to be
// the same company typed twice. The tolerance scales with the name length:
// at least 2 edits, up to 30% of the longer name.
func SimilarCompanyName(a, b string) bool {
	na := normalizeCompanyName(a)
	nb := normalizeCompanyName(b)

	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	longer := len([]rune(na))
	if l := len([]rune(nb)); l > longer {
		longer = l
	}
	threshold := longer * 30 / 100
	if threshold < 2 {
		threshold = 2
	}

	return Levenshtein(na, nb) <= threshold
}

func normalizeCompanyName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	// Strip common legal suffixes so "Acme SAL" matches "Acme s.a.l."
	for _, suffix := range []string{" s.a.l.", " s.a.l", " sal", " sarl", " s.a.r.l", " llc", " ltd", " inc", " co."} {
		name = strings.TrimSuffix(name, suffix)
	}

	return strings.Join(strings.Fields(name), " ")
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
