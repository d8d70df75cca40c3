package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/abacus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of the command tree to its default, since
// rootCmd is shared between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEval(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "1 + 1"}, "2\n"},
		{[]string{"eval", "5-3"}, "2\n"},
		{[]string{"eval", "2", "*", "3"}, "6\n"},
		{[]string{"eval", "10/2"}, "5\n"},
		{[]string{"eval", "10 / 4"}, "5/2\n"},
		{[]string{"add", "1", "1"}, "2\n"},
		{[]string{"subtract", "5", "3"}, "2\n"},
		{[]string{"multiply", "2", "3"}, "6\n"},
		{[]string{"divide", "10", "2"}, "5\n"},
		{[]string{"subtract", "--", "-1", "2"}, "-3\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "", "eval", "1/0")
	assert.ErrorContains(t, err, "division by zero")

	_, err = execute(t, "", "divide", "1", "0")
	assert.ErrorContains(t, err, "division by zero")

	_, err = execute(t, "", "add", "1")
	assert.Error(t, err)

	_, err = execute(t, "", "--store", "tape", "eval", "1")
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestEval_JSON(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "", "eval", "--json", "1/3")
	require.NoError(t, err)
	assert.Contains(t, out, `"result": "1/3"`)
	assert.Contains(t, out, `"kind": "rat"`)

	// The record is printed even when the evaluation fails.
	out, err = execute(t, "", "divide", "--json", "1", "0")
	require.Error(t, err)
	assert.Contains(t, out, `"error": "division by zero"`)
}

func TestEval_Graph(t *testing.T) {
	out, err := execute(t, "", "eval", "--graph", "(1 + 2) * 3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `n1["+ <br/> = 3"]`)
}

func TestHistory_FileStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ABACUS_STORE_DIR", t.TempDir())

	for _, src := range []string{"1 + 1", "2 * 3", "1 / 0"} {
		execute(t, "", "--store", "file", "eval", src)
	}

	out, err := execute(t, "", "--store", "file", "history")
	require.NoError(t, err)
	assert.Equal(t, "1 / 0  error: divide at offset 2: division by zero\n2 * 3 = 6\n1 + 1 = 2\n", out)

	out, err = execute(t, "", "--store", "file", "history", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	out, err = execute(t, "", "--store", "file", "history", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"expression": "2 * 3"`)

	out, err = execute(t, "", "--store", "file", "history", "--clear")
	require.NoError(t, err)
	assert.Equal(t, "history cleared\n", out)

	out, err = execute(t, "", "--store", "file", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "history is empty")
}

func TestHistory_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, writeConfig(dir, "store:\n  backend: file\n  dir: "+dir+"/h\nhistory_limit: 1\n"))

	execute(t, "", "eval", "1+1")
	execute(t, "", "eval", "2+2")

	out, err := execute(t, "", "history")
	require.NoError(t, err)
	assert.Equal(t, "2 + 2 = 4\n", out, "history_limit from abacus.yaml")
}

func TestREPL(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "1+1\n1/0\n:history 1\n:quit\n", "repl")
	require.NoError(t, err)
	assert.Equal(t, "= 2\nerror: divide at offset 1: division by zero\n1 / 0  error: divide at offset 1: division by zero\n", out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "abacus version "+abacus.Version+"\n", out)
}
