package history

import (
	"sort"
	"strings"
)

// Project produces the visible sequence for a search query: entries
// whose text contains the query case-insensitively (an empty query
// passes everything), sorted pinned-first and by updatedAt descending
// within each group.
//
// The sort is stable so equal keys keep their cache order. Project is a
// pure function over a snapshot; it never mutates its input.
func Project(entries []Entry, query string) []Entry {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if needle == "" || strings.Contains(strings.ToLower(e.Text), needle) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out
}
