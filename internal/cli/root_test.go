package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidate_EmbeddedGlossary(t *testing.T) {
	out, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "glossary valid")
}

func TestValidate_JSONFormat(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
}

func TestValidate_BadGlossaryFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: {}\n"), 0o644))

	out, _, err := execute(t, "--glossary", path, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error")
}

func TestIngestRunExport_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rollcall.db")
	cache := filepath.Join(dir, "cache")
	require.NoError(t, os.Mkdir(cache, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cache, "bills.json"), []byte(`[
		{"bill_id":"HB0001","bill_type":"HB","bill_number_raw":"1","chamber":"House",
		 "description":"An act","introduction_date":"2024-01-10"}
	]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cache, "actions.json"), []byte(`[
		{"bill_id":"HB0001","chamber":"House","date":"2024-01-10","action_text":"Filed with the Clerk"},
		{"bill_id":"HB0001","chamber":"House","date":"2024-02-01","action_text":"Referred to Rules Committee"}
	]`), 0o644))

	out, _, err := execute(t, "--db", db, "ingest", cache)
	require.NoError(t, err)
	assert.Contains(t, out, "1 bills")

	out, _, err = execute(t, "--db", db, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "outcomes")
	assert.Contains(t, out, "PASS")

	out, _, err = execute(t, "--db", db, "outcomes")
	require.NoError(t, err)
	assert.Contains(t, out, `"bill_id":"HB0001"`)
	assert.Contains(t, out, `"current_stage":"IN_COMMITTEE"`)
}

func TestIngest_StrictAborts(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "cache")
	require.NoError(t, os.Mkdir(cache, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cache, "bills.json"),
		[]byte(`[{"bill_id":"HB0001","bill_number_raw":"1"}]`), 0o644))

	_, _, err := execute(t, "--db", filepath.Join(dir, "x.db"), "ingest", "--strict", cache)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
