package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geoform/internal/form"
	"geoform/internal/service"
	"geoform/internal/typeform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenForm = `{
  "id": "DFFFuY",
  "fields": [
    {"ref": "where", "title": "[E9] Where?", "type": "short_text"},
    {"ref": "new-location", "title": "[N1] Missing?", "type": "short_text"},
    {"ref": "notes", "title": "Notes", "type": "long_text"}
  ],
  "logic": [
    {"type": "field", "ref": "new-location", "actions": [
      {"action": "jump", "details": {"to": {"type": "field", "value": "where"}}, "condition": {"op": "always", "vars": []}},
      {"action": "jump", "details": {"to": {"type": "field", "value": "gone"}}, "condition": {"op": "always", "vars": []}}
    ]}
  ]
}`

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", t.TempDir(), "--env", filepath.Join(t.TempDir(), ".env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeForm(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCmd(t *testing.T) {
	out, err := runCmd(t, "validate", "--in", writeForm(t, brokenForm))
	assert.ErrorIs(t, err, service.ErrValidationFailed)
	assert.Contains(t, out, "missing-target new-location")
	assert.Contains(t, out, "backward-jump new-location")
	assert.Contains(t, out, "untagged notes")
	assert.Contains(t, out, "3 fields, 1 rules, 2 problems, 1 untagged")
}

func TestValidateCmd_MissingFlag(t *testing.T) {
	_, err := runCmd(t, "validate")
	assert.Error(t, err)
}

func TestNormalizeCmd(t *testing.T) {
	out, err := runCmd(t, "normalize", "United States", "Chiyoda District 100")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "\"United States\"\t\"United States\"\tUSA", lines[0])
	assert.Equal(t, "\"Chiyoda District 100\"\t\"Chiyoda\"\t-", lines[1])
}

func TestGenerateCmd_MissingToken(t *testing.T) {
	t.Setenv("TYPEFORM_TOKEN", "")
	_, err := runCmd(t, "generate", "--form-id", "DFFFuY")
	assert.ErrorIs(t, err, typeform.ErrMissingToken)
}

func TestGenerateCmd_FromFile(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "map.json")
	require.NoError(t, os.WriteFile(snapshot, []byte(`{"data":[
		{"Town":"Mynttorget, Stockholm","Country":"Sweden"},
		{"Town":"Lund","Country":"Sweden"}
	]}`), 0o644))
	tables := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(tables, []byte("countries: [Sweden, Norway]\n"), 0o644))
	t.Setenv("GEO_TABLES", tables)

	base := `{
  "id": "DFFFuY",
  "fields": [
    {"ref": "where", "title": "[E9] Where?", "type": "short_text"},
    {"ref": "new-location", "title": "[N1] Missing?", "type": "short_text"}
  ],
  "logic": []
}`
	out := filepath.Join(dir, "out.json")

	_, err := runCmd(t, "generate", "--in", writeForm(t, base), "--snapshot", snapshot, "--out", out)
	require.NoError(t, err)

	d, err := form.ReadFile(out)
	require.NoError(t, err)
	// where, Earth, Sweden, Stockholm, new-location
	require.Len(t, d.Fields, 5)
	assert.Equal(t, "where", d.Fields[0].Ref)
	assert.Equal(t, "new-location", d.Fields[4].Ref)
	assert.Equal(t, form.LocationSection, d.Fields[1].Tag.Section)
}
