// pkg/index/index.go
// Package index defines the interfaces the database composes its indexes
// through. The forward index has two implementations: the persistent B+tree
// in pkg/btree and the in-memory MemForward below. MemForward is exercised
// only by this package's own tests; no test compares it against the tree.
package index

import (
	"sort"

	"github.com/pstiasny/inverted-index/pkg/entity"
)

// Forward maps an entity id to the stored entity.
type Forward interface {
	// Get retrieves an entity by id; btree.ErrNotFound-style sentinel
	// errors signal absence.
	Get(id string) (*entity.Entity, error)

	// Insert stores a new entity. Ids are unique; the caller checks.
	Insert(e *entity.Entity) error
}

// Inverted maps a term to the sorted posting list of ids whose content
// contains it.
type Inverted interface {
	// Term returns the posting list for a term, empty if absent.
	Term(term string) []string

	// Insert adds id to the term's posting list, keeping it sorted and
	// deduplicated.
	Insert(term, id string)
}

// MemForward is a map-backed Forward implementation.
type MemForward struct {
	entities map[string]*entity.Entity
	notFound error
}

// NewMemForward creates an empty in-memory forward index. Lookups of absent
// ids return notFound.
func NewMemForward(notFound error) *MemForward {
	return &MemForward{
		entities: make(map[string]*entity.Entity),
		notFound: notFound,
	}
}

func (m *MemForward) Get(id string) (*entity.Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, m.notFound
	}
	return e, nil
}

func (m *MemForward) Insert(e *entity.Entity) error {
	m.entities[e.ID] = e
	return nil
}

// IDs returns all stored ids in ascending order.
func (m *MemForward) IDs() []string {
	ids := make([]string, 0, len(m.entities))
	for id := range m.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
