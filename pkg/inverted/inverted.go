// pkg/inverted/inverted.go
package inverted

// Index is the in-memory inverted index. Posting lists grow without bound
// for the life of the process; there is no deletion.
type Index struct {
	terms map[string]PostingList
}

// NewIndex creates an empty inverted index.
func NewIndex() *Index {
	return &Index{terms: make(map[string]PostingList)}
}

// Term returns the posting list for a term verbatim; empty if the term has
// never been seen.
func (ix *Index) Term(term string) []string {
	return ix.terms[term]
}

// Insert adds id to the term's posting list.
func (ix *Index) Insert(term, id string) {
	ix.terms[term] = ix.terms[term].Add(id)
}
