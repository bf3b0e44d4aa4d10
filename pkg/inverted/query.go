// pkg/inverted/query.go
package inverted

// Query is a node of the query tree: a term, or the conjunction of two
// subqueries. Conjunction is associative and commutative, so evaluation
// order does not affect the result.
type Query interface {
	// Eval returns the query's matching ids, ascending.
	Eval(ix *Index) PostingList
}

// Term matches every entity whose content contains the term.
type Term struct {
	T string
}

func (q Term) Eval(ix *Index) PostingList {
	return PostingList(ix.Term(q.T))
}

// And matches the intersection of its two subqueries.
type And struct {
	L Query
	R Query
}

func (q And) Eval(ix *Index) PostingList {
	return q.L.Eval(ix).Intersect(q.R.Eval(ix))
}
