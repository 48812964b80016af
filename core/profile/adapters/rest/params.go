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

package http

import (
	"net/http"
	"strconv"
)

const userIDParam = "user_id"

// queryUserID reads the trusted user_id query parameter. It reports false
// after writing a 400 problem.
func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get(userIDParam)
	if raw == "" {
		invalidParam(r.Context(), w, http.StatusBadRequest, userIDParam, "is required")
		return 0, false
	}
	return parseID(w, r, userIDParam, raw)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	return parseID(w, r, name, r.PathValue(name))
}

func parseID(w http.ResponseWriter, r *http.Request, name, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		invalidParam(r.Context(), w, http.StatusBadRequest, name, "must be an integer")
		return 0, false
	}
	return id, true
}
