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

package util

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/failpoint"
	"go.uber.org/atomic"
)

const failpointPrefix = "tileloader/"

var failpointsEnabled atomic.Bool

// EnableFailpoints enables use of failpoints.
// It should be called before loading anything to avoid data race.
func EnableFailpoints() {
	failpointsEnabled.Store(true)
}

// IsFailpointsEnabled reports whether EnableFailpoints has been called.
func IsFailpointsEnabled() bool {
	return failpointsEnabled.Load()
}

// EvalFailpoint injects code for testing. It is used to replace `failpoint.Inject`
// to make it possible to be used in a library.
func EvalFailpoint(name string) (interface{}, error) {
	if !failpointsEnabled.Load() {
		return nil, errors.New("failpoints are disabled")
	}
	return failpoint.Eval(failpointPrefix + name)
}
