package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"crop-yield-service/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	base := []string{
		"--model-dir", filepath.Join(dir, "models"),
		"--fingerprint-cache", filepath.Join(dir, "fingerprint.json"),
		"--catalog-seed", filepath.Join("..", "..", "configs", "varieties.yaml"),
		"--level", "error",
	}
	cmd := newRootCmd(config.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, base...))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_MissingModelDir(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "degraded", resp["status"])
	report := resp["report"].(map[string]interface{})
	assert.Equal(t, true, report["model_dir_missing"])
	assert.Equal(t, true, report["fallback_active"])
}

func TestValidate_Strict(t *testing.T) {
	_, err := run(t, "validate", "--strict")
	assert.ErrorIs(t, err, errDegraded)
}

func TestFingerprint_YAML(t *testing.T) {
	out, err := run(t, "fingerprint", "-o", "yaml")
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(t, resp["digest"])
	cmp := resp["comparison"].(map[string]interface{})
	assert.Equal(t, true, cmp["first_run"])
}

func TestVariety(t *testing.T) {
	out, err := run(t, "variety", "Rice", "Ludhiana")
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "PR-126", resp["variety_name"])
	meta := resp["selection_metadata"].(map[string]interface{})
	assert.Equal(t, "Punjab", meta["region"])
	assert.Equal(t, "regional_highest_yield", meta["reason"])
}

func TestVariety_UnknownCrop(t *testing.T) {
	_, err := run(t, "variety", "Quinoa", "Ludhiana")
	assert.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "validate", "-o", "xml")
	assert.Error(t, err)
}
