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
	"testing"

	"github.com/pingcap/failpoint"
	"github.com/stretchr/testify/require"
)

func TestWithRecovery(t *testing.T) {
	var recovered interface{}
	WithRecovery(func() { panic("boom") }, func(r interface{}) { recovered = r })
	require.Equal(t, "boom", recovered)

	called := false
	WithRecovery(func() {}, func(r interface{}) {
		called = true
		require.Nil(t, r)
	})
	require.True(t, called)
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "1 Bytes", FormatBytes(1))
	require.Equal(t, "1024 Bytes", FormatBytes(1024))
	require.Equal(t, "1.50 KB", FormatBytes(1536))
	require.Equal(t, "2 MB", FormatBytes(2<<20))
	require.Equal(t, "10.5 MB", FormatBytes(10*(1<<20)+(1<<19)))
}

func TestString(t *testing.T) {
	require.Equal(t, "", String(nil))
	require.Equal(t, "tileset", String([]byte("tileset")))
}

func TestEvalFailpoint(t *testing.T) {
	EnableFailpoints()
	require.True(t, IsFailpointsEnabled())

	_, err := EvalFailpoint("unitTestFailpoint")
	require.Error(t, err)

	require.Nil(t, failpoint.Enable("tileloader/unitTestFailpoint", `return("hit")`))
	val, err := EvalFailpoint("unitTestFailpoint")
	require.NoError(t, err)
	require.Equal(t, "hit", val)
	require.Nil(t, failpoint.Disable("tileloader/unitTestFailpoint"))
}
