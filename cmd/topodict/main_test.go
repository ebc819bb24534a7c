/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/suparena/topobind/config"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.zy")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestEvalPrintsYAML(t *testing.T) {
	path := writeScript(t, `(dictionary (set_dictionary (box 1 1 1) (dict ["a" "b"] [1 "x"])))`)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), config.Default(), []string{"eval", path}, &out))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{"a": 1, "b": "x"}, got)
}

func TestEvalRendersTopology(t *testing.T) {
	path := writeScript(t, `(box 1 1 1)`)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), config.Default(), []string{"eval", path}, &out))
	assert.Contains(t, out.String(), "kind: Cell")
}

func TestEvalReportsScriptErrors(t *testing.T) {
	path := writeScript(t, `(dict ["a"] [])`)
	err := run(context.Background(), config.Default(), []string{"eval", path}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestDumpEmptyStore(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), config.Default(), []string{"dump"}, &out))
	assert.Empty(t, bytes.TrimSpace(out.Bytes()))
}

func TestUsage(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, errUsage, run(ctx, config.Default(), nil, &bytes.Buffer{}))
	assert.Equal(t, errUsage, run(ctx, config.Default(), []string{"bogus"}, &bytes.Buffer{}))
	assert.Equal(t, errUsage, run(ctx, config.Default(), []string{"eval"}, &bytes.Buffer{}))
}
