package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/commune/internal/testutil"
)

// cliEnv runs root commands against one temporary database.
type cliEnv struct {
	t  *testing.T
	db string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{t: t, db: filepath.Join(t.TempDir(), "commune.db")}
}

// run executes the root command with --db and --env-file preset and
// returns stdout.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", e.db, "--env-file", filepath.Join(e.t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// runJSON executes with --format json and decodes the response.
func (e *cliEnv) runJSON(args ...string) (CLIResponse, error) {
	e.t.Helper()
	out, err := e.run(append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "output: %s", out)
	return out
}

// genesis creates a commune with a small fee and a unit scale of 1.
func (e *cliEnv) genesis() {
	e.t.Helper()
	e.mustRun("init", "--as", key("admin"), "--join-fee", "10", "--tax", "3", "--unit-scale", "1")
}

// member funds and joins name.
func (e *cliEnv) member(name string, extra uint64) {
	e.t.Helper()
	e.mustRun("fund", key(name), strconv.FormatUint(10+extra, 10))
	e.mustRun("join", "--as", key(name))
}

func key(name string) string {
	return testutil.Identity(name).String()
}

// dataMap returns the response payload as a map.
func dataMap(t *testing.T, resp CLIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return m
}
