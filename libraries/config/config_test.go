// Copyright 2024 The Accumulo Connector Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.05, s.LowestCardinalityThreshold)
	assert.Equal(t, 0.5, s.IndexRatio)
}

func TestLoad_FileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.toml")
	require.NoError(t, writeFile(path, "index_ratio = 0.75\nnum_artificial_splits = 3\n"))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.75, s.IndexRatio)
	assert.Equal(t, 3, s.NumArtificialSplits)
	assert.Equal(t, 0.05, s.LowestCardinalityThreshold, "unset knobs keep their default")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.toml")
	require.NoError(t, writeFile(path, "index_ratio = 0.75\n"))

	t.Setenv("ACCCONN_INDEX_RATIO", "0.9")
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, s.IndexRatio)
}

func TestLoad_InvalidEnvFloat(t *testing.T) {
	t.Setenv("ACCCONN_INDEX_RATIO", "not-a-float")
	_, err := Load("")
	assert.Error(t, err)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
