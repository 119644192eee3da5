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

package logutil

import (
	"context"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

type ctxLogKeyType struct{}

var ctxLogKey = ctxLogKeyType{}

// BgLogger returns the default global logger.
func BgLogger() *zap.Logger {
	return log.L()
}

// Logger gets a contextual logger from current context.
// contextual logger will output common fields from context.
func Logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if ctxlogger, ok := ctx.Value(ctxLogKey).(*zap.Logger); ok {
			return ctxlogger
		}
	}
	return log.L()
}

// WithLogger attaches a logger to ctx, later returned by Logger.
func WithLogger(ctx context.Context, lg *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLogKey, lg)
}

// Config is the subset of log settings used to build the global logger.
type Config struct {
	Level  string
	Format string
	File   string
}

// InitLogger builds a logger from cfg and installs it as the global one.
func InitLogger(cfg Config) error {
	conf := &log.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File: log.FileLogConfig{
			Filename: cfg.File,
			MaxSize:  256,
		},
	}
	lg, p, err := log.InitLogger(conf)
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(lg, p)
	return nil
}
