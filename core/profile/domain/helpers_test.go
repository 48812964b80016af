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
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"profilesvc/core/profile/adapters/persistence/memory"
	"profilesvc/core/profile/domain"
	"profilesvc/modules/clock"

	"github.com/stretchr/testify/require"
)

// today is the fixed "now" of every test in this package.
var today = clock.Date(2024, time.June, 15)

type fakeBlobStore struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	uploadErr error
}

func (f *fakeBlobStore) Upload(_ context.Context, data []byte, folder string) (*domain.StoredBlob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads++
	id := fmt.Sprintf("%s/asset-%d", folder, f.uploads)
	return &domain.StoredBlob{URL: "https://cdn.test/" + id, AssetID: id}, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, assetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, assetID)
	return true, nil
}

func (f *fakeBlobStore) Uploads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

type fixture struct {
	app   *domain.Application
	store *memory.Store
	blobs *fakeBlobStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	blobs := &fakeBlobStore{}
	return &fixture{
		app:   domain.NewApp(store, store, blobs, domain.WithClock(today)),
		store: store,
		blobs: blobs,
	}
}

func birthdayForAge(age int) time.Time {
	return today.At.AddDate(-age, 0, 0)
}

func validProfile(id int64) *domain.CreateProfileParams {
	return &domain.CreateProfileParams{
		ID:                  id,
		Username:            fmt.Sprintf("user-%d", id),
		Birthday:            time.Date(1995, time.March, 10, 0, 0, 0, 0, time.UTC),
		Introduction:        "hello",
		SexualOrientationID: domain.HeterosexualMale,
	}
}

func (f *fixture) create(t *testing.T, params *domain.CreateProfileParams) {
	t.Helper()
	require.NoError(t, f.app.CreateProfile(context.Background(), params))
}

func (f *fixture) upload(t *testing.T, profileID int64) *domain.Image {
	t.Helper()
	img, err := f.app.UploadImage(context.Background(), pngUpload(profileID))
	require.NoError(t, err)
	return img
}

func pngUpload(profileID int64) *domain.UploadImageParams {
	return &domain.UploadImageParams{
		ProfileID:   profileID,
		ContentType: "image/png",
		Data:        []byte("\x89PNG\r\n\x1a\nfake"),
	}
}

func requireReason(t *testing.T, err error, field, reason string) {
	t.Helper()
	require.ErrorIs(t, err, domain.ErrInvalidData)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, field, ve.Field)
	require.Equal(t, reason, ve.Reason)
}
