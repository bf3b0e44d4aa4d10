// pkg/cli/repl_test.go
package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, script string) string {
	t.Helper()
	var out bytes.Buffer
	r := NewREPL(testDB(t), strings.NewReader(script), &out)
	require.NoError(t, r.Run())
	return out.String()
}

func TestREPLSession(t *testing.T) {
	out := runScript(t, `(add "foo" "bar")
(get "foo")
(get "missing")
(exit)
`)

	require.Contains(t, out, Prompt)
	require.Contains(t, out, "bar\n")
	require.NotContains(t, out, "missing")
}

func TestREPLRecoversFromErrors(t *testing.T) {
	out := runScript(t, `(add "a
(frob)
(add "foo" "bar")
(add "foo" "bar")
(get "foo")
(exit)
`)

	require.Contains(t, out, "PARSE ERROR unterminated string\n")
	require.Contains(t, out, "COMMAND ERROR Unknown command: frob(0)\n")
	require.Contains(t, out, "COMMAND ERROR Entity exists\n")
	// The loop kept going: the get still ran.
	require.Contains(t, out, "bar\n")
}

func TestREPLExitStopsProcessing(t *testing.T) {
	out := runScript(t, `(add "foo" "bar")
(exit)
(get "foo")
`)

	require.NotContains(t, out, "bar\n")
}

func TestREPLSkipsBlankLines(t *testing.T) {
	out := runScript(t, `

(add "foo" "bar")
(get "foo")
(exit)
`)

	require.Contains(t, out, "bar\n")
}

func TestREPLEndsAtEOF(t *testing.T) {
	// No (exit): end of input terminates the loop cleanly.
	out := runScript(t, `(add "foo" "bar")
(get "foo")
`)

	require.Contains(t, out, "bar\n")
}
