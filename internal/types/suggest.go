package types

import (
	"sort"
	"strings"
)

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}

// findSimilar returns up to max candidates within edit distance 3 of name,
// closest first
func findSimilar(name string, candidates []string, max int) []string {
	type suggestion struct {
		name     string
		distance int
	}

	var found []suggestion
	seen := make(map[string]bool)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		if d := levenshteinDistance(name, c); d > 0 && d <= 3 {
			found = append(found, suggestion{c, d})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].distance == found[j].distance {
			return found[i].name < found[j].name
		}
		return found[i].distance < found[j].distance
	})

	result := make([]string, 0, max)
	for i := 0; i < len(found) && i < max; i++ {
		result = append(result, found[i].name)
	}
	return result
}

// didYouMean formats a suggestion line, or returns "" when nothing is close
func didYouMean(name string, candidates []string) string {
	similar := findSimilar(name, candidates, 3)
	if len(similar) == 0 {
		return ""
	}
	return "did you mean " + strings.Join(quoteAll(similar), " or ") + "?"
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = `"` + n + `"`
	}
	return out
}
