// pkg/inverted/posting.go
// Package inverted implements the in-memory inverted index: a map from term
// to posting list, and the Term/And query tree evaluated against it.
package inverted

import "sort"

// PostingList is an ascending, duplicate-free list of entity ids.
type PostingList []string

// Add inserts id in sorted position. Inserting an id already present is a
// no-op, so the list stays a set.
func (pl PostingList) Add(id string) PostingList {
	i := sort.SearchStrings(pl, id)
	if i < len(pl) && pl[i] == id {
		return pl
	}
	pl = append(pl, "")
	copy(pl[i+1:], pl[i:])
	pl[i] = id
	return pl
}

// Intersect returns the ids present in both lists, via a linear sorted
// merge.
func (pl PostingList) Intersect(other PostingList) PostingList {
	var result PostingList
	i, j := 0, 0
	for i < len(pl) && j < len(other) {
		switch {
		case pl[i] < other[j]:
			i++
		case other[j] < pl[i]:
			j++
		default:
			result = append(result, pl[i])
			i++
			j++
		}
	}
	return result
}
