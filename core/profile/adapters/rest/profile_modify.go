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

	"profilesvc/core/profile/domain"
	"profilesvc/modules/api/serde"
)

// ModifyProfile applies a partial update. Absent fields are kept, an
// explicit null on interest_ids clears them.
func (p *ProfileAPI) ModifyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	var body ModifyProfileRequest
	if err := serde.ParseJsonBody(http.MaxBytesReader(w, r.Body, maxJSONBody), &body); err != nil {
		invalidParam(ctx, w, http.StatusUnprocessableEntity, "body", "malformed JSON body")
		return
	}

	updated, err := p.app.ModifyProfile(ctx, &domain.ModifyProfileParams{
		ID:                  userID,
		Username:            patchOf(body.Username),
		Birthday:            patchDate(body.Birthday),
		Introduction:        patchOf(body.Introduction),
		GenderID:            patchOf(body.GenderID),
		SexualOrientationID: patchOf(body.SexualOrientationID),
		InterestIDs:         patchOf(body.InterestIDs),
	})
	if err != nil {
		writeDomainError(ctx, w, err, http.StatusUnprocessableEntity)
		return
	}
	serde.WriteJSON(w, http.StatusOK, mapOwnProfile(updated))
}
