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
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerFromContext(t *testing.T) {
	require.Equal(t, BgLogger(), Logger(context.Background()))

	lg := zap.NewNop()
	ctx := WithLogger(context.Background(), lg)
	require.Same(t, lg, Logger(ctx))
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	require.Error(t, InitLogger(Config{Level: "chatty"}))
}
