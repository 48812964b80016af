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

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// CreateProfile stores the profile of the calling user. Returns 200 on
// success, 400 if it already exists, 422 for invalid fields.
func (p *ProfileAPI) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	var body CreateProfileRequest
	if err := serde.ParseJsonBody(http.MaxBytesReader(w, r.Body, maxJSONBody), &body); err != nil {
		invalidParam(ctx, w, http.StatusUnprocessableEntity, "body", "malformed JSON body")
		return
	}
	switch {
	case body.Username == nil:
		invalidParam(ctx, w, http.StatusUnprocessableEntity, "username", "is required")
		return
	case body.Birthday == nil:
		invalidParam(ctx, w, http.StatusUnprocessableEntity, "birthday", "is required")
		return
	case body.SexualOrientationID == nil:
		invalidParam(ctx, w, http.StatusUnprocessableEntity, "sexual_orientation_id", "is required")
		return
	}

	err := p.app.CreateProfile(ctx, &domain.CreateProfileParams{
		ID:                  userID,
		Username:            *body.Username,
		Birthday:            body.Birthday.Time,
		Introduction:        body.Introduction,
		GenderID:            body.GenderID,
		SexualOrientationID: *body.SexualOrientationID,
		InterestIDs:         body.InterestIDs,
		ImageURLs:           body.ImageURLs,
	})
	if err != nil {
		writeDomainError(ctx, w, err, http.StatusUnprocessableEntity)
		return
	}

	serde.WriteJSON(w, http.StatusOK, CreateProfileResponse{
		Message:   "Profile created successfully",
		ProfileID: userID,
		UserID:    userID,
	})
}
