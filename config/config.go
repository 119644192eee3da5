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
	"sync/atomic"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

var globalConf atomic.Value

func init() {
	conf := DefaultConfig()
	StoreGlobalConfig(&conf)
}

// Config contains configuration options.
type Config struct {
	Assets    Assets    `toml:"assets" json:"assets"`
	Scheduler Scheduler `toml:"scheduler" json:"scheduler"`
	Log       Log       `toml:"log" json:"log"`
	Metrics   Metrics   `toml:"metrics" json:"metrics"`
	Trace     Trace     `toml:"trace" json:"trace"`
}

// Assets is the configuration of the filesystem platform.
type Assets struct {
	// Root is the directory file names are resolved against.
	Root string `toml:"root" json:"root"`
	// FetchWorkers is the max number of goroutines reading files.
	FetchWorkers int `toml:"fetch-workers" json:"fetch-workers"`
	// WorkerIdle is how long an idle reader goroutine is kept.
	WorkerIdle Duration `toml:"worker-idle" json:"worker-idle"`
}

// Scheduler is the configuration of the frame loop.
type Scheduler struct {
	// FrameInterval is the time between two scheduling passes.
	FrameInterval Duration `toml:"frame-interval" json:"frame-interval"`
	// SlowPassThreshold logs passes that take longer than this.
	SlowPassThreshold Duration `toml:"slow-pass-threshold" json:"slow-pass-threshold"`
}

// Log is the log configuration.
type Log struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
	File   string `toml:"file" json:"file"`
}

// Metrics is the prometheus push configuration. Pushing is off when PushAddr is empty.
type Metrics struct {
	PushAddr     string   `toml:"push-addr" json:"push-addr"`
	PushInterval Duration `toml:"push-interval" json:"push-interval"`
	Job          string   `toml:"job" json:"job"`
	Instance     string   `toml:"instance" json:"instance"`
}

// Trace selects the trace categories written to the log.
type Trace struct {
	Categories []string `toml:"categories" json:"categories"`
}

// Duration is a time.Duration decoded from strings like "15ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Assets: Assets{
			Root:         ".",
			FetchWorkers: 4,
			WorkerIdle:   Duration{time.Minute},
		},
		Scheduler: Scheduler{
			FrameInterval:     Duration{16 * time.Millisecond},
			SlowPassThreshold: Duration{50 * time.Millisecond},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Metrics: Metrics{
			PushInterval: Duration{15 * time.Second},
			Job:          "tileloader",
		},
	}
}

// LoadFile reads a TOML file on top of the default configuration.
func LoadFile(path string) (*Config, error) {
	conf := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("could not read config file %s: %s", path, err)
	}
	meta, err := toml.Decode(string(data), &conf)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode config file %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	if err := conf.Valid(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Valid checks if this config is valid.
func (c *Config) Valid() error {
	if c.Assets.FetchWorkers <= 0 {
		return errors.New("assets.fetch-workers should be greater than 0")
	}
	if c.Scheduler.FrameInterval.Duration <= 0 {
		return errors.New("scheduler.frame-interval should be greater than 0")
	}
	if c.Metrics.PushAddr != "" && c.Metrics.PushInterval.Duration <= 0 {
		return errors.New("metrics.push-interval should be greater than 0 when pushing")
	}
	return nil
}

// GetGlobalConfig returns the global configuration.
func GetGlobalConfig() *Config {
	return globalConf.Load().(*Config)
}

// StoreGlobalConfig stores a new config to the globalConf.
func StoreGlobalConfig(config *Config) {
	globalConf.Store(config)
}

// UpdateGlobal updates the global config, and provide a restore function that can be used to restore to the original.
func UpdateGlobal(f func(conf *Config)) func() {
	g := GetGlobalConfig()
	restore := func() {
		StoreGlobalConfig(g)
	}
	newConf := *g
	f(&newConf)
	StoreGlobalConfig(&newConf)
	return restore
}
