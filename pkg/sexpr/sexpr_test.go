// pkg/sexpr/sexpr_test.go
package sexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	expr, err := Parse(`(add "foo" "bar baz")`)
	require.NoError(t, err)

	list, ok := expr.(List)
	require.True(t, ok)
	require.Len(t, list, 3)
	require.Equal(t, Symbol("add"), list[0])
	require.Equal(t, String("foo"), list[1])
	require.Equal(t, String("bar baz"), list[2])
}

func TestParseNestedList(t *testing.T) {
	expr, err := Parse(`(a (b "c") d)`)
	require.NoError(t, err)

	list := expr.(List)
	require.Len(t, list, 3)
	inner, ok := list[1].(List)
	require.True(t, ok)
	require.Equal(t, Symbol("b"), inner[0])
	require.Equal(t, String("c"), inner[1])
}

func TestParseBareSymbol(t *testing.T) {
	expr, err := Parse("exit")
	require.NoError(t, err)
	require.Equal(t, Symbol("exit"), expr)
}

func TestParseEmptyString(t *testing.T) {
	expr, err := Parse(`(get "")`)
	require.NoError(t, err)
	require.Equal(t, String(""), expr.(List)[1])
}

func TestParseStringKeepsParens(t *testing.T) {
	expr, err := Parse(`(add "a(b)c" "x")`)
	require.NoError(t, err)
	require.Equal(t, String("a(b)c"), expr.(List)[1])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace only", "   "},
		{"unterminated list", `(add "a"`},
		{"unterminated string", `(add "a`},
		{"stray close", `)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseNoSpacesAroundParens(t *testing.T) {
	expr, err := Parse(`(query"x""y")`)
	require.NoError(t, err)
	list := expr.(List)
	require.Len(t, list, 3)
	require.Equal(t, Symbol("query"), list[0])
	require.Equal(t, String("x"), list[1])
	require.Equal(t, String("y"), list[2])
}
