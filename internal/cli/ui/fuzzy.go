package ui

import (
	"sort"
	"strings"
)

// FuzzyMatchOptions bounds a suggestion search.
type FuzzyMatchOptions struct {
	MaxDistance    int // edit-distance ceiling; 0 means DefaultMaxDistance
	MaxSuggestions int // result cap; 0 means DefaultMaxSuggestions
	CaseSensitive  bool
}

const (
	DefaultMaxDistance    = 3
	DefaultMaxSuggestions = 3
)

// FindSimilar returns the candidates closest to target by edit distance,
// nearest first, for "did you mean" output. Builtin names here follow a
// `Namespace_function` convention, so among candidates at equal distance
// one sharing the target's namespace prefix ranks first: a typo is far
// more often in the function half than in the namespace.
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	if opts == nil {
		opts = &FuzzyMatchOptions{}
	}
	maxDistance := opts.MaxDistance
	if maxDistance == 0 {
		maxDistance = DefaultMaxDistance
	}
	maxSuggestions := opts.MaxSuggestions
	if maxSuggestions == 0 {
		maxSuggestions = DefaultMaxSuggestions
	}

	normalize := func(s string) string {
		if opts.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}
	targetCmp := normalize(target)

	type scored struct {
		name          string
		distance      int
		sameNamespace bool
	}
	var matches []scored
	for _, candidate := range candidates {
		d := LevenshteinDistance(targetCmp, normalize(candidate))
		if d == 0 || d > maxDistance {
			continue
		}
		matches = append(matches, scored{
			name:          candidate,
			distance:      d,
			sameNamespace: namespaceOf(targetCmp) == namespaceOf(normalize(candidate)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		if matches[i].sameNamespace != matches[j].sameNamespace {
			return matches[i].sameNamespace
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// namespaceOf returns the `Namespace` half of a `Namespace_function` name,
// or "" for an un-namespaced name.
func namespaceOf(name string) string {
	if i := strings.IndexByte(name, '_'); i > 0 {
		return name[:i]
	}
	return ""
}

// LevenshteinDistance is the minimum number of single-character edits
// (insertions, deletions, substitutions) turning s1 into s2. Two-row
// rolling variant; O(len(s2)) memory.
func LevenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < curr[j] {
				curr[j] = ins
			}
			if sub := prev[j-1] + cost; sub < curr[j] {
				curr[j] = sub
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
