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
	"errors"
	"testing"
	"time"

	"profilesvc/core/profile/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, id int64, imageURLs ...string) {
	t.Helper()
	err := s.WithTx(context.Background(), func(ctx context.Context, tx domain.ProfileWriteTx) error {
		return tx.CreateProfile(ctx, &domain.CreateProfileParams{
			ID:                  id,
			Username:            "someone",
			Birthday:            time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
			SexualOrientationID: 3,
			InterestIDs:         []int{1},
			ImageURLs:           imageURLs,
		})
	})
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(ctx context.Context, tx domain.ProfileWriteTx) error {
		require.NoError(t, tx.CreateProfile(ctx, &domain.CreateProfileParams{ID: 1, Username: "a", SexualOrientationID: 0}))
		_, err := tx.AddImage(ctx, 1, "https://a/1.png")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetProfileByID(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
	links, images := s.Rows(1)
	assert.Zero(t, links)
	assert.Zero(t, images)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	s := New()
	seed(t, s, 1)

	assert.Panics(t, func() {
		_ = s.WithTx(context.Background(), func(ctx context.Context, tx domain.ProfileWriteTx) error {
			_ = tx.DeleteProfile(ctx, 1)
			panic("half way")
		})
	})

	_, err := s.GetProfileByID(context.Background(), 1)
	require.NoError(t, err)
}

func TestWithTxHonoursCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTx(ctx, func(context.Context, domain.ProfileWriteTx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTxSeesItsOwnWrites(t *testing.T) {
	s := New()
	seed(t, s, 1, "https://a/1.png")

	err := s.WithTx(context.Background(), func(ctx context.Context, tx domain.ProfileWriteTx) error {
		require.NoError(t, tx.ModifyProfile(ctx, &domain.ModifyProfileParams{ID: 1, Username: domain.Value("renamed")}))
		got, err := tx.GetProfileByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Username)
		assert.Equal(t, []string{"https://a/1.png"}, got.ImageURLs())

		_, err = tx.GetProfileByID(ctx, 2)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestAddImageLimit(t *testing.T) {
	s := New()
	seed(t, s, 1, "1", "2", "3", "4", "5", "6")

	err := s.WithTx(context.Background(), func(ctx context.Context, tx domain.ProfileWriteTx) error {
		_, err := tx.AddImage(ctx, 1, "7")
		return err
	})
	require.ErrorIs(t, err, domain.ErrImageLimit)

	n, err := s.CountImages(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestReferenceChecks(t *testing.T) {
	s := New()
	gender := 7
	err := s.WithTx(context.Background(), func(ctx context.Context, tx domain.ProfileWriteTx) error {
		return tx.CreateProfile(ctx, &domain.CreateProfileParams{ID: 1, Username: "a", GenderID: &gender})
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "gender_id", ve.Field)
}

func TestListProfileIDsByOrientation(t *testing.T) {
	s := New()
	seed(t, s, 3)
	seed(t, s, 1)

	ids, err := s.ListProfileIDsByOrientation(context.Background(), []int{3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	ids, err = s.ListProfileIDsByOrientation(context.Background(), []int{0})
	require.NoError(t, err)
	assert.Empty(t, ids)
}
