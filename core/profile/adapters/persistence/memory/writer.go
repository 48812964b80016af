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

package memory

import (
	"context"
	"slices"

	"profilesvc/core/profile/domain"
)

var _ domain.ProfileWriteTx = (*tx)(nil)

type tx struct {
	st *state
}

func (t *tx) CreateProfile(_ context.Context, params *domain.CreateProfileParams) error {
	if _, ok := t.st.profiles[params.ID]; ok {
		return domain.ErrDuplicateProfile
	}
	if err := t.checkRefs(params.GenderID, params.SexualOrientationID); err != nil {
		return err
	}

	t.st.profiles[params.ID] = domain.Profile{
		ID:                  params.ID,
		Username:            params.Username,
		Birthday:            params.Birthday,
		Introduction:        params.Introduction,
		GenderID:            params.GenderID,
		SexualOrientationID: params.SexualOrientationID,
	}
	t.link(params.ID, params.InterestIDs)
	for i, url := range params.ImageURLs {
		t.addImage(params.ID, url, i == 0)
	}
	return nil
}

func (t *tx) GetProfileByID(_ context.Context, id int64) (*domain.Profile, error) {
	p, ok := t.st.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	view := t.st.view(p)
	return &view, nil
}

func (t *tx) ModifyProfile(_ context.Context, params *domain.ModifyProfileParams) error {
	p, ok := t.st.profiles[params.ID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	if params.Username.HasValue() {
		p.Username = params.Username.Value
	}
	if params.Birthday.HasValue() {
		p.Birthday = params.Birthday.Value
	}
	if params.Introduction.HasValue() {
		p.Introduction = params.Introduction.Value
	}
	if params.GenderID.Set {
		p.GenderID = nil
		if !params.GenderID.Null {
			g := params.GenderID.Value
			p.GenderID = &g
		}
	}
	if params.SexualOrientationID.HasValue() {
		p.SexualOrientationID = params.SexualOrientationID.Value
	}
	if err := t.checkRefs(p.GenderID, p.SexualOrientationID); err != nil {
		return err
	}
	t.st.profiles[params.ID] = p

	if params.InterestIDs.Set {
		t.unlink(params.ID)
		t.link(params.ID, params.InterestIDs.Value)
	}
	return nil
}

func (t *tx) DeleteProfile(_ context.Context, id int64) error {
	if _, ok := t.st.profiles[id]; !ok {
		return domain.ErrProfileNotFound
	}
	t.unlink(id)
	t.st.images = slices.DeleteFunc(t.st.images, func(img domain.Image) bool {
		return img.ProfileID == id
	})
	delete(t.st.profiles, id)
	return nil
}

func (t *tx) AddImage(_ context.Context, profileID int64, url string) (*domain.Image, error) {
	if _, ok := t.st.profiles[profileID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	n := t.st.countImages(profileID)
	if n >= domain.MaxImages {
		return nil, domain.ErrImageLimit
	}
	img := t.addImage(profileID, url, n == 0)
	return &img, nil
}

func (t *tx) RemoveImage(_ context.Context, profileID, imageID int64) error {
	i := slices.IndexFunc(t.st.images, func(img domain.Image) bool {
		return img.ID == imageID && img.ProfileID == profileID
	})
	if i < 0 {
		return domain.ErrImageNotFound
	}
	t.st.images = slices.Delete(t.st.images, i, i+1)
	return nil
}

func (t *tx) checkRefs(genderID *int, orientationID int) error {
	if genderID != nil && !slices.ContainsFunc(t.st.genders, func(g domain.Gender) bool { return g.ID == *genderID }) {
		return &domain.ValidationError{Field: "gender_id", Reason: "unknown gender"}
	}
	if !slices.ContainsFunc(t.st.orientations, func(o domain.SexualOrientation) bool { return o.ID == orientationID }) {
		return &domain.ValidationError{Field: "sexual_orientation_id", Reason: "unknown sexual orientation"}
	}
	return nil
}

func (t *tx) link(profileID int64, interestIDs []int) {
	for _, id := range interestIDs {
		t.st.links = append(t.st.links, link{id: t.st.nextLinkID, profileID: profileID, interestID: id})
		t.st.nextLinkID++
	}
}

func (t *tx) unlink(profileID int64) {
	t.st.links = slices.DeleteFunc(t.st.links, func(l link) bool {
		return l.profileID == profileID
	})
}

func (t *tx) addImage(profileID int64, url string, primary bool) domain.Image {
	img := domain.Image{ID: t.st.nextImageID, ProfileID: profileID, URL: url, IsPrimary: primary}
	t.st.nextImageID++
	t.st.images = append(t.st.images, img)
	return img
}
