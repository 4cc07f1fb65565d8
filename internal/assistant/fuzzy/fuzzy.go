package fuzzy

import "strings"

// DefaultThreshold is the minimum similarity for a room match when no
// configured value is supplied.
const DefaultThreshold = 0.6

// Normalize lowercases the input, strips everything outside [a-z0-9 ],
// collapses runs of whitespace and trims the ends. Both sides of every
// comparison pass through it.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true // suppress leading space
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ', r == '\t', r == '\n', r == '-', r == '_':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Levenshtein returns the edit distance between two strings: the
// minimum number of single-character insertions, deletions and
// substitutions transforming one into the other.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Single-row rolling computation of the standard DP matrix.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
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
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Similarity scores how closely two phrases match, in [0, 1].
//
// Both inputs are normalised first. Containment in either direction
// ("living" inside "living room") scores 1.0; otherwise the score is
// 1 - distance/maxlen.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 1
	}

	dist := Levenshtein(na, nb)
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}

	return 1 - float64(dist)/float64(maxLen)
}

// ResolveRoom matches spoken input against the known room names and
// returns the canonical name of the best match.
//
// A containment match wins immediately; otherwise the highest-scoring
// candidate at or above the threshold wins, with earlier names taking
// ties. Returns false when the input is empty, no rooms exist, or
// nothing clears the threshold.
func ResolveRoom(input string, roomNames []string, threshold float64) (string, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	ni := Normalize(input)
	if ni == "" {
		return "", false
	}

	best := ""
	bestScore := 0.0

	for _, name := range roomNames {
		nn := Normalize(name)
		if nn == "" {
			continue
		}

		if nn == ni || strings.Contains(ni, nn) || strings.Contains(nn, ni) {
			return name, true
		}

		score := 1 - float64(Levenshtein(ni, nn))/float64(maxRuneLen(ni, nn))
		if score > bestScore {
			best = name
			bestScore = score
		}
	}

	if bestScore >= threshold {
		return best, true
	}
	return "", false
}

func maxRuneLen(a, b string) int {
	la := len([]rune(a))
	lb := len([]rune(b))
	if lb > la {
		return lb
	}
	return la
}
