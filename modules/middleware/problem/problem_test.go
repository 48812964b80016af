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

package problem_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"profilesvc/modules/middleware/problem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	problem.Write(rec, problem.UnprocessableEntity("username must not be empty",
		problem.WithInvalidParam("username", "must not be empty"),
		problem.WithInvalidParam("birthday", "is required"),
		problem.WithTraceID("req-1"),
	))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, problem.ContentType, rec.Header().Get("Content-Type"))

	var body problem.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unprocessable Entity", body.Title)
	assert.Equal(t, "username must not be empty", body.Detail)
	assert.Equal(t, "about:blank", body.Type)
	assert.Equal(t, "req-1", body.TraceID)
	assert.Equal(t, []problem.InvalidParam{
		{Name: "username", Reason: "must not be empty"},
		{Name: "birthday", Reason: "is required"},
	}, body.InvalidParams)
}

func TestWriteNil(t *testing.T) {
	rec := httptest.NewRecorder()
	problem.Write(rec, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOptionalFieldsOmitted(t *testing.T) {
	raw, err := json.Marshal(problem.NotFound(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"about:blank","title":"Not Found","status":404}`, string(raw))
}

func TestUnknownStatusTitle(t *testing.T) {
	assert.Equal(t, "Unknown Error", problem.FromStatus(599, "").Title)
}
