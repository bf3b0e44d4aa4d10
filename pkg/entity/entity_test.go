// pkg/entity/entity_test.go
package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokens(t *testing.T) {
	e := &Entity{ID: "id1", Content: "x y  z"}
	require.Equal(t, []string{"x", "y", "z"}, e.Tokens())
}

func TestTokensEmpty(t *testing.T) {
	e := &Entity{ID: "id1", Content: "   "}
	require.Empty(t, e.Tokens())
}

func TestTokensExact(t *testing.T) {
	// Terms are byte-exact: no case folding.
	e := &Entity{ID: "id1", Content: "Foo foo\tFOO"}
	require.Equal(t, []string{"Foo", "foo", "FOO"}, e.Tokens())
}
