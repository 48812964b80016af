// Copyright 2025 Nhat-Nguyen Nguyen
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

package pg

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stephenafamo/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnRefused = errors.New("connection refused")

// downExecutor fails every statement.
type downExecutor struct{}

func (downExecutor) QueryContext(context.Context, string, ...any) (scan.Rows, error) {
	return nil, errConnRefused
}

func (downExecutor) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errConnRefused
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestQueryErrorsAreLoggedUnderErrorKey(t *testing.T) {
	buf := captureLogs(t)

	_, err := loadProfile(context.Background(), downExecutor{}, 1)
	require.ErrorIs(t, err, errConnRefused)

	_, err = referenceRows(context.Background(), downExecutor{}, gendersTable, "gender_name")
	require.ErrorIs(t, err, errConnRefused)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, "connection refused", entry["error"])
		assert.NotContains(t, entry, "err")
	}
}
