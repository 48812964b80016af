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

	"profilesvc/modules/api/serde"
)

// DeleteProfile removes the profile with its interests and images.
func (p *ProfileAPI) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	if err := p.app.DeleteProfile(r.Context(), userID); err != nil {
		writeDomainError(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	serde.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Profile deleted successfully"})
}
