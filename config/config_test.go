// Copyright 2025 TiKV Authors
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
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "tileloader.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[assets]
root = "maps"
fetch-workers = 2

[scheduler]
frame-interval = "8ms"

[log]
level = "debug"

[trace]
categories = ["scheduler"]
`)
	conf, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "maps", conf.Assets.Root)
	require.Equal(t, 2, conf.Assets.FetchWorkers)
	require.Equal(t, time.Minute, conf.Assets.WorkerIdle.Duration)
	require.Equal(t, 8*time.Millisecond, conf.Scheduler.FrameInterval.Duration)
	require.Equal(t, "debug", conf.Log.Level)
	require.Equal(t, "text", conf.Log.Format)
	require.Equal(t, []string{"scheduler"}, conf.Trace.Categories)
}

func TestLoadFileRejects(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, "[assets]\nfetch-workers = 0\n"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, "[assets]\nworkers = 3\n"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, "[scheduler]\nframe-interval = \"soon\"\n"))
	require.Error(t, err)
}

func TestUpdateGlobal(t *testing.T) {
	require.Equal(t, 4, GetGlobalConfig().Assets.FetchWorkers)
	restore := UpdateGlobal(func(conf *Config) {
		conf.Assets.FetchWorkers = 9
	})
	require.Equal(t, 9, GetGlobalConfig().Assets.FetchWorkers)
	restore()
	require.Equal(t, 4, GetGlobalConfig().Assets.FetchWorkers)
}
