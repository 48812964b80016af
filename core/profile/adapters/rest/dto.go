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
	"time"

	"profilesvc/core/profile/domain"

	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime/types"
)

type (
	NamedItem struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	ReferenceDataResponse struct {
		Genders            []NamedItem `json:"genders"`
		SexualOrientations []NamedItem `json:"sexual_orientations"`
		Interests          []NamedItem `json:"interests"`
	}

	CreateProfileRequest struct {
		Username            *string     `json:"username"`
		Birthday            *types.Date `json:"birthday"`
		Introduction        string      `json:"introduction"`
		GenderID            *int        `json:"gender_id"`
		SexualOrientationID *int        `json:"sexual_orientation_id"`
		InterestIDs         []int       `json:"interest_ids"`
		ImageURLs           []string    `json:"image_urls"`
	}

	CreateProfileResponse struct {
		Message   string `json:"message"`
		ProfileID int64  `json:"profile_id"`
		UserID    int64  `json:"user_id"`
	}

	// ModifyProfileRequest distinguishes absent fields from explicit nulls.
	ModifyProfileRequest struct {
		Username            nullable.Nullable[string]     `json:"username,omitempty"`
		Birthday            nullable.Nullable[types.Date] `json:"birthday,omitempty"`
		Introduction        nullable.Nullable[string]     `json:"introduction,omitempty"`
		GenderID            nullable.Nullable[int]        `json:"gender_id,omitempty"`
		SexualOrientationID nullable.Nullable[int]        `json:"sexual_orientation_id,omitempty"`
		InterestIDs         nullable.Nullable[[]int]      `json:"interest_ids,omitempty"`
	}

	PublicProfile struct {
		ID                  int64    `json:"id"`
		Username            string   `json:"username"`
		Introduction        string   `json:"introduction"`
		Age                 int      `json:"age"`
		GenderID            *int     `json:"gender_id"`
		Gender              *string  `json:"gender"`
		SexualOrientationID int      `json:"sexual_orientation_id"`
		SexualOrientation   string   `json:"sexual_orientation"`
		Interests           []string `json:"interests"`
		Images              []string `json:"images"`
		PrimaryImage        *string  `json:"primary_image"`
	}

	// OwnProfile is the view a user gets of their own profile.
	OwnProfile struct {
		PublicProfile
		Birthday types.Date `json:"birthday"`
		ImageIDs []int64    `json:"image_ids"`
	}

	UploadImageResponse struct {
		ImageID   int64  `json:"image_id"`
		ImageURL  string `json:"image_url"`
		IsPrimary bool   `json:"is_primary"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func mapPublicProfile(p *domain.Profile) PublicProfile {
	out := PublicProfile{
		ID:                  p.ID,
		Username:            p.Username,
		Introduction:        p.Introduction,
		Age:                 p.Age,
		GenderID:            p.GenderID,
		SexualOrientationID: p.SexualOrientationID,
		SexualOrientation:   p.SexualOrientationName,
		Interests:           p.Interests,
		Images:              p.ImageURLs(),
	}
	if out.Interests == nil {
		out.Interests = []string{}
	}
	if p.GenderID != nil {
		name := p.GenderName
		out.Gender = &name
	}
	if img, ok := p.PrimaryImage(); ok {
		out.PrimaryImage = &img.URL
	}
	return out
}

func mapPublicProfiles(profiles []domain.Profile) []PublicProfile {
	out := make([]PublicProfile, 0, len(profiles))
	for i := range profiles {
		out = append(out, mapPublicProfile(&profiles[i]))
	}
	return out
}

func mapOwnProfile(p *domain.Profile) OwnProfile {
	return OwnProfile{
		PublicProfile: mapPublicProfile(p),
		Birthday:      types.Date{Time: p.Birthday},
		ImageIDs:      p.ImageIDs(),
	}
}

func mapReferenceData(ref *domain.ReferenceData) ReferenceDataResponse {
	out := ReferenceDataResponse{
		Genders:            make([]NamedItem, 0, len(ref.Genders)),
		SexualOrientations: make([]NamedItem, 0, len(ref.SexualOrientations)),
		Interests:          make([]NamedItem, 0, len(ref.Interests)),
	}
	for _, g := range ref.Genders {
		out.Genders = append(out.Genders, NamedItem{ID: g.ID, Name: g.Name})
	}
	for _, o := range ref.SexualOrientations {
		out.SexualOrientations = append(out.SexualOrientations, NamedItem{ID: o.ID, Name: o.Name})
	}
	for _, i := range ref.Interests {
		out.Interests = append(out.Interests, NamedItem{ID: i.ID, Name: i.Name})
	}
	return out
}

// patchOf converts a decoded nullable field into a domain patch.
func patchOf[T any](n nullable.Nullable[T]) domain.Patch[T] {
	switch {
	case !n.IsSpecified():
		return domain.Patch[T]{}
	case n.IsNull():
		return domain.Null[T]()
	default:
		return domain.Value(n.MustGet())
	}
}

func patchDate(n nullable.Nullable[types.Date]) domain.Patch[time.Time] {
	p := patchOf(n)
	return domain.Patch[time.Time]{Set: p.Set, Null: p.Null, Value: p.Value.Time}
}
