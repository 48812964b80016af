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

// Package memory keeps profiles in process memory. It honours the same
// transactional contract as the Postgres adapter and is meant for local
// development and tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"profilesvc/core/profile/domain"
)

var (
	_ domain.ProfileReadStore  = (*Store)(nil)
	_ domain.ProfileWriteStore = (*Store)(nil)
)

type (
	Store struct {
		mu sync.RWMutex
		st state
	}

	state struct {
		profiles map[int64]domain.Profile
		links    []link
		images   []domain.Image

		nextLinkID  int64
		nextImageID int64

		genders      []domain.Gender
		orientations []domain.SexualOrientation
		interests    []domain.Interest
	}

	link struct {
		id         int64
		profileID  int64
		interestID int
	}
)

// New returns a store seeded with the same reference data as the
// database migrations.
func New() *Store {
	s := &Store{st: state{
		profiles:    map[int64]domain.Profile{},
		nextLinkID:  1,
		nextImageID: 1,
		genders: []domain.Gender{
			{ID: 0, Name: "male"},
			{ID: 1, Name: "female"},
			{ID: 2, Name: "non-binary"},
		},
		orientations: []domain.SexualOrientation{
			{ID: 0, Name: "heterosexual male"},
			{ID: 1, Name: "homosexual male"},
			{ID: 2, Name: "bisexual male"},
			{ID: 3, Name: "heterosexual female"},
			{ID: 4, Name: "homosexual female"},
			{ID: 5, Name: "bisexual female"},
		},
	}}
	for i, name := range []string{"travel", "music", "movies", "reading", "cooking", "hiking", "sports", "gaming", "photography", "art"} {
		s.st.interests = append(s.st.interests, domain.Interest{ID: i + 1, Name: name})
	}
	return s
}

func (s state) clone() state {
	c := s
	c.profiles = maps.Clone(s.profiles)
	c.links = slices.Clone(s.links)
	c.images = slices.Clone(s.images)
	return c
}

// WithTx implements domain.ProfileWriteStore. Writers are serialised and
// any error or panic restores the state seen before fn ran.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.ProfileWriteTx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()

	if err := fn(ctx, &tx{st: &s.st}); err != nil {
		return err
	}
	committed = true
	return nil
}

// WithTimeoutTx implements domain.ProfileWriteStore.
func (s *Store) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx domain.ProfileWriteTx) error) error {
	ctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return s.WithTx(ctx, fn)
}

// Rows reports how many interest links and image rows reference a
// profile id.
func (s *Store) Rows(profileID int64) (links, images int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.st.links {
		if l.profileID == profileID {
			links++
		}
	}
	for _, img := range s.st.images {
		if img.ProfileID == profileID {
			images++
		}
	}
	return links, images
}
