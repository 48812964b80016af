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

package domain_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"profilesvc/core/profile/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("first image after empty is primary", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, validProfile(1))

		first := f.upload(t, 1)
		second := f.upload(t, 1)
		assert.True(t, first.IsPrimary)
		assert.False(t, second.IsPrimary)
		assert.Equal(t, "https://cdn.test/profile_images/asset-1", first.URL)

		got, err := f.app.GetProfileByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{first.ID, second.ID}, got.ImageIDs())
	})

	t.Run("seventh upload is refused before the blob store", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, validProfile(1))
		for range domain.MaxImages {
			f.upload(t, 1)
		}
		require.Equal(t, 6, f.blobs.Uploads())

		_, err := f.app.UploadImage(ctx, pngUpload(1))
		require.ErrorIs(t, err, domain.ErrImageLimit)
		assert.Equal(t, 6, f.blobs.Uploads())

		_, images := f.store.Rows(1)
		assert.Equal(t, 6, images)
	})

	t.Run("input validation", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, validProfile(1))

		tests := []struct {
			name   string
			params *domain.UploadImageParams
			reason string
		}{
			{
				name:   "not an image",
				params: &domain.UploadImageParams{ProfileID: 1, ContentType: "text/plain", Data: []byte("hi")},
				reason: "File must be an image",
			},
			{
				name:   "empty",
				params: &domain.UploadImageParams{ProfileID: 1, ContentType: "image/png"},
				reason: "File is empty",
			},
			{
				name:   "over 5MB",
				params: &domain.UploadImageParams{ProfileID: 1, ContentType: "image/jpeg", Data: bytes.Repeat([]byte{1}, domain.MaxImageBytes+1)},
				reason: "File size must not exceed 5MB",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.app.UploadImage(ctx, tt.params)
				requireReason(t, err, "file", tt.reason)
			})
		}
		assert.Zero(t, f.blobs.Uploads())
	})

	t.Run("exactly 5MB is accepted", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, validProfile(1))
		_, err := f.app.UploadImage(ctx, &domain.UploadImageParams{
			ProfileID:   1,
			ContentType: "image/jpeg",
			Data:        bytes.Repeat([]byte{1}, domain.MaxImageBytes),
		})
		require.NoError(t, err)
	})

	t.Run("unknown profile", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.app.UploadImage(ctx, pngUpload(9))
		require.ErrorIs(t, err, domain.ErrProfileNotFound)
		assert.Zero(t, f.blobs.Uploads())
	})

	t.Run("blob store failure writes no row", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, validProfile(1))
		f.blobs.uploadErr = errors.New("connection reset")

		_, err := f.app.UploadImage(ctx, pngUpload(1))
		require.ErrorIs(t, err, domain.ErrUpstream)

		_, images := f.store.Rows(1)
		assert.Zero(t, images)
	})

	t.Run("failed metadata write discards the blob", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, validProfile(1))
		app := domain.NewApp(f.store, brokenWriter{}, f.blobs, domain.WithClock(today))

		_, err := app.UploadImage(ctx, pngUpload(1))
		require.ErrorIs(t, err, domain.ErrUnhandled)
		assert.Equal(t, []string{"profile_images/asset-1"}, f.blobs.deleted)
	})
}

func TestDeleteImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, validProfile(1))
	f.create(t, validProfile(2))
	primary := f.upload(t, 1)
	other := f.upload(t, 1)

	t.Run("image of another profile", func(t *testing.T) {
		err := f.app.DeleteImage(ctx, 2, primary.ID)
		require.ErrorIs(t, err, domain.ErrImageNotFound)
	})

	t.Run("primary is not re-elected", func(t *testing.T) {
		require.NoError(t, f.app.DeleteImage(ctx, 1, primary.ID))

		got, err := f.app.GetProfileByID(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got.Images, 1)
		assert.Equal(t, other.ID, got.Images[0].ID)
		_, ok := got.PrimaryImage()
		assert.False(t, ok)
		assert.Empty(t, f.blobs.deleted)
	})

	t.Run("already deleted", func(t *testing.T) {
		require.ErrorIs(t, f.app.DeleteImage(ctx, 1, primary.ID), domain.ErrImageNotFound)
	})
}

// brokenWriter fails every transaction.
type brokenWriter struct{}

func (brokenWriter) WithTx(context.Context, func(context.Context, domain.ProfileWriteTx) error) error {
	return errors.New("connection refused")
}

func (brokenWriter) WithTimeoutTx(context.Context, time.Duration, func(context.Context, domain.ProfileWriteTx) error) error {
	return errors.New("connection refused")
}
