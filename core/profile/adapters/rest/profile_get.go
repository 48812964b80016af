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

// GetOwnProfile returns the caller's profile including birthday and image
// ids.
func (p *ProfileAPI) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	prof, err := p.app.GetProfileByID(r.Context(), userID)
	if err != nil {
		writeDomainError(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	serde.WriteJSON(w, http.StatusOK, mapOwnProfile(prof))
}

func (p *ProfileAPI) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := p.app.ListProfiles(r.Context())
	if err != nil {
		writeDomainError(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	serde.WriteJSON(w, http.StatusOK, mapPublicProfiles(profiles))
}

// Recommend lists the profiles matching a fixed orientation category.
// Unknown categories answer 404.
func (p *ProfileAPI) Recommend(w http.ResponseWriter, r *http.Request) {
	category := domain.RecommendationCategory(r.PathValue("category"))
	profiles, err := p.app.Recommend(r.Context(), category)
	if err != nil {
		writeDomainError(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	serde.WriteJSON(w, http.StatusOK, mapPublicProfiles(profiles))
}

func (p *ProfileAPI) ListInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, userIDParam)
	if !ok {
		return
	}
	names, err := p.app.ListInterestNames(r.Context(), userID)
	if err != nil {
		writeDomainError(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	if names == nil {
		names = []string{}
	}
	serde.WriteJSON(w, http.StatusOK, names)
}

// GetReferenceData lists genders, orientations and interests.
func (p *ProfileAPI) GetReferenceData(w http.ResponseWriter, r *http.Request) {
	ref, err := p.app.ReferenceData(r.Context())
	if err != nil {
		writeDomainError(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	serde.WriteJSON(w, http.StatusOK, mapReferenceData(ref))
}
