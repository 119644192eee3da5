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

package platform

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pingcap/errors"
	"github.com/tiancaiamao/gp"
	"github.com/tikv/tileloader/internal/logutil"
	"github.com/tikv/tileloader/metrics"
	"github.com/tikv/tileloader/util"
	"github.com/tikv/tileloader/util/async"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FilesystemPlatform reads files below a root directory on a worker pool.
// Results are queued on a run loop and promises are settled by Poll, so a
// future only changes state on the goroutine that calls Poll.
type FilesystemPlatform struct {
	root  string
	pool  *gp.Pool
	loop  *async.RunLoop
	reads singleflight.Group
}

// NewFilesystemPlatform creates a platform reading below root with at most
// workers reader goroutines, each exiting after idle without work.
func NewFilesystemPlatform(root string, workers int, idle time.Duration) *FilesystemPlatform {
	if workers <= 0 {
		workers = 1
	}
	p := &FilesystemPlatform{
		root: root,
		pool: gp.New(workers, idle),
		loop: async.NewRunLoop(),
	}
	p.loop.Pool = p.pool
	return p
}

// Root returns the directory names are resolved against.
func (p *FilesystemPlatform) Root() string {
	return p.root
}

// PromiseFileContents implements Platform.
func (p *FilesystemPlatform) PromiseFileContents(name string) Future[string] {
	promise := NewPromise[string]()
	full := p.resolve(name)
	async.NewHandoff(p.loop, func(contents string, err error) {
		if err != nil {
			promise.Fail(err)
			return
		}
		promise.Fulfill(contents)
	}).Then(func(contents string, err error) (string, error) {
		if err != nil {
			metrics.FileFetchErr.Inc()
			logutil.BgLogger().Warn("read file failed", zap.String("file", name), zap.Error(err))
			return contents, err
		}
		metrics.FileFetchOK.Inc()
		metrics.FileFetchBytes.Add(float64(len(contents)))
		logutil.BgLogger().Debug("read file", zap.String("file", name),
			zap.String("size", util.FormatBytes(int64(len(contents)))))
		return contents, nil
	}).Start(func() (string, error) {
		v, err, _ := p.reads.Do(full, func() (interface{}, error) {
			return readFile(full)
		})
		contents, _ := v.(string)
		return contents, err
	}, func(r interface{}) error {
		return errors.Annotatef(ErrLost, "panic reading %s: %v", name, r)
	})
	return promise.Future()
}

// resolve maps name to a path that cannot escape the root.
func (p *FilesystemPlatform) resolve(name string) string {
	return filepath.Join(p.root, filepath.FromSlash(path.Clean("/"+filepath.ToSlash(name))))
}

func readFile(full string) (string, error) {
	if _, err := util.EvalFailpoint("fileFetchLost"); err == nil {
		return "", errors.Annotatef(ErrLost, "read %s", full)
	}
	b, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Annotatef(ErrFileNotFound, "read %s", full)
		}
		return "", errors.Annotatef(err, "read %s", full)
	}
	return util.String(b), nil
}

// Poll settles the promises whose reads have completed and returns how many
// results it delivered. It does not wait.
func (p *FilesystemPlatform) Poll() (int, error) {
	return p.loop.Poll()
}

// Wait is Poll that blocks until at least one result arrives or ctx is done.
// A context deadline is not reported as an error.
func (p *FilesystemPlatform) Wait(ctx context.Context) (int, error) {
	n, err := p.loop.Exec(ctx)
	if errors.Cause(err) == context.DeadlineExceeded {
		return n, nil
	}
	return n, err
}

// Close stops the worker pool. Reads already handed to the pool still settle
// on a later Poll.
func (p *FilesystemPlatform) Close() {
	p.pool.Close()
}
