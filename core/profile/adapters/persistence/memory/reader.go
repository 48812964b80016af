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

// GetProfileByID implements domain.ProfileReadStore.
func (s *Store) GetProfileByID(_ context.Context, id int64) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	view := s.st.view(p)
	return &view, nil
}

// ListProfiles implements domain.ProfileReadStore.
func (s *Store) ListProfiles(_ context.Context, orientationIDs ...int) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Profile{}
	for _, id := range s.st.sortedIDs() {
		p := s.st.profiles[id]
		if len(orientationIDs) > 0 && !slices.Contains(orientationIDs, p.SexualOrientationID) {
			continue
		}
		out = append(out, s.st.view(p))
	}
	return out, nil
}

// ListProfileIDsByOrientation implements domain.ProfileReadStore.
func (s *Store) ListProfileIDsByOrientation(_ context.Context, orientationIDs []int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []int64{}
	for _, id := range s.st.sortedIDs() {
		if slices.Contains(orientationIDs, s.st.profiles[id].SexualOrientationID) {
			out = append(out, id)
		}
	}
	return out, nil
}

// ListInterestNames implements domain.ProfileReadStore.
func (s *Store) ListInterestNames(_ context.Context, profileID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.st.profiles[profileID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	return s.st.interestNames(profileID), nil
}

// CountImages implements domain.ProfileReadStore.
func (s *Store) CountImages(_ context.Context, profileID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.st.profiles[profileID]; !ok {
		return 0, domain.ErrProfileNotFound
	}
	return s.st.countImages(profileID), nil
}

// ListReferenceData implements domain.ProfileReadStore.
func (s *Store) ListReferenceData(_ context.Context) (*domain.ReferenceData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &domain.ReferenceData{
		Genders:            slices.Clone(s.st.genders),
		SexualOrientations: slices.Clone(s.st.orientations),
		Interests:          slices.Clone(s.st.interests),
	}, nil
}

func (st *state) sortedIDs() []int64 {
	ids := make([]int64, 0, len(st.profiles))
	for id := range st.profiles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (st *state) view(p domain.Profile) domain.Profile {
	if p.GenderID != nil {
		for _, g := range st.genders {
			if g.ID == *p.GenderID {
				p.GenderName = g.Name
			}
		}
	}
	for _, o := range st.orientations {
		if o.ID == p.SexualOrientationID {
			p.SexualOrientationName = o.Name
		}
	}
	p.Interests = st.interestNames(p.ID)
	p.Images = []domain.Image{}
	for _, img := range st.images {
		if img.ProfileID == p.ID {
			p.Images = append(p.Images, img)
		}
	}
	return p
}

func (st *state) interestNames(profileID int64) []string {
	names := []string{}
	for _, l := range st.links {
		if l.profileID != profileID {
			continue
		}
		for _, in := range st.interests {
			if in.ID == l.interestID && !slices.Contains(names, in.Name) {
				names = append(names, in.Name)
			}
		}
	}
	return names
}

func (st *state) countImages(profileID int64) int {
	n := 0
	for _, img := range st.images {
		if img.ProfileID == profileID {
			n++
		}
	}
	return n
}
