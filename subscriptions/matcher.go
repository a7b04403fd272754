package subscriptions

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const DefaultThreshold = 75

// Score rates the similarity of a and b from 0 to 100, using the edit
// distance normalised by the longer string. Case and surrounding spaces are
// ignored.
func Score(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// Resolve returns the candidate scoring highest against query, provided it
// reaches threshold. On equal scores the earlier candidate wins.
func Resolve(query string, candidates []string, threshold int) (string, bool) {
	best, bestScore := "", -1
	for _, c := range candidates {
		if s := Score(query, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore < threshold {
		return "", false
	}
	return best, true
}
