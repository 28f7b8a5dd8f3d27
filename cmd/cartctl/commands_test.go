package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute(), errOut.String())
	return out.String()
}

func fields(line string) []string {
	return strings.Fields(line)
}

func TestCartctl_EmptyList(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ledis")
	t.Setenv("LEDIS_DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	assert.Equal(t, "cart is empty\n", run(t, "list"))
}

func TestCartctl_PersistsAcrossRuns(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ledis")
	t.Setenv("LEDIS_DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	run(t, "add", "a", "--title", "Widget", "--price", "9.5")
	run(t, "add", "a")
	run(t, "inc", "a")
	run(t, "dec", "a")
	out := run(t, "list")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "TITLE", "PRICE", "QTY"}, fields(lines[0]))
	assert.Equal(t, []string{"a", "Widget", "9.50", "2"}, fields(lines[1]))
	assert.Equal(t, []string{"2"}, fields(lines[2]))
}

func TestCartctl_DecrementStopsAtZero(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ledis")
	t.Setenv("LEDIS_DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	run(t, "add", "a", "--title", "W")
	run(t, "dec", "a")
	out := run(t, "dec", "a")

	assert.Contains(t, out, "a")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0", fields(lines[1])[len(fields(lines[1]))-1])
}

func TestCartctl_RejectsBadArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"inc"})

	assert.Error(t, cmd.Execute())
}

func TestCartctl_RejectsUnencodablePrice(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ledis")
	t.Setenv("LEDIS_DATA_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	for _, price := range []string{"NaN", "Inf", "-Inf", "-1"} {
		t.Run(price, func(t *testing.T) {
			var errOut bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&errOut)
			cmd.SetArgs([]string{"add", "a", "--price=" + price})

			assert.Error(t, cmd.Execute())
		})
	}

	assert.Contains(t, run(t, "list"), "cart is empty")
}
