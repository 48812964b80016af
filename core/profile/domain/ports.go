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

package domain

import (
	"context"
	"time"
)

// ProfileReadStore defines the port for read operations on profiles.
//
// It is separated from ProfileWriteStore so implementations can route reads
// to a replica. All methods are read-only and run without a transaction.
type ProfileReadStore interface {
	// GetProfileByID returns the joined view of one profile.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	GetProfileByID(ctx context.Context, id int64) (*Profile, error)

	// ListProfiles returns every profile in the joined view, ordered by id.
	// When orientationIDs is non-empty only profiles whose orientation is
	// in the set are returned.
	ListProfiles(ctx context.Context, orientationIDs ...int) ([]Profile, error)

	// ListProfileIDsByOrientation returns the identifiers of the profiles
	// whose orientation is in the given set, ordered by id.
	ListProfileIDsByOrientation(ctx context.Context, orientationIDs []int) ([]int64, error)

	// ListInterestNames returns the names of the interests linked to a
	// profile. Links to unknown interest ids are skipped.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	ListInterestNames(ctx context.Context, profileID int64) ([]string, error)

	// CountImages returns how many images a profile currently holds.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	CountImages(ctx context.Context, profileID int64) (int, error)

	// ListReferenceData returns every gender, orientation and interest.
	ListReferenceData(ctx context.Context) (*ReferenceData, error)
}

// ProfileWriteStore defines the port for write operations on profiles.
//
// All writes go through WithTx so that every multi-row change of a single
// logical operation is committed or rolled back as a whole.
type ProfileWriteStore interface {
	// WithTx executes fn within a database transaction.
	//
	//   - If fn returns an error, the transaction is rolled back
	//   - If fn returns nil, the transaction is committed
	//   - Panics trigger a rollback
	//
	// Do NOT nest WithTx calls, ProfileWriteTx intentionally does not
	// expose WithTx.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx ProfileWriteTx) error) error
	// WithTimeoutTx is the same as WithTx but applies a context timeout before starting the transaction.
	WithTimeoutTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx ProfileWriteTx) error) error
}

// ProfileWriteTx is bound to a single transaction. It is NOT safe for
// concurrent use and must not outlive the WithTx callback.
type ProfileWriteTx interface {
	// GetProfileByID returns the joined view of one profile as the
	// transaction sees it.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	GetProfileByID(ctx context.Context, id int64) (*Profile, error)

	// CreateProfile inserts the profile row, one interest link per id and
	// one image row per URL (the first one primary).
	// Returns ErrDuplicateProfile if the id is already taken.
	CreateProfile(ctx context.Context, params *CreateProfileParams) error

	// ModifyProfile applies a partial update. When params.InterestIDs is
	// set, existing interest links are deleted and the new ones inserted.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	ModifyProfile(ctx context.Context, params *ModifyProfileParams) error

	// DeleteProfile removes the interest links, then the images, then the
	// profile row itself.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	DeleteProfile(ctx context.Context, id int64) error

	// AddImage appends an image. It is primary iff the profile held no
	// image at insertion time.
	//
	// Returns ErrProfileNotFound if the profile doesn't exist and
	// ErrImageLimit if it already holds MaxImages images.
	AddImage(ctx context.Context, profileID int64, url string) (*Image, error)

	// RemoveImage deletes one image row owned by the profile. No other
	// image is promoted when the primary one goes away.
	// Returns ErrImageNotFound if no such image belongs to the profile.
	RemoveImage(ctx context.Context, profileID, imageID int64) error
}

// BlobStore persists image bytes outside of the database.
type BlobStore interface {
	// Upload stores data under folder and returns where it can be fetched.
	Upload(ctx context.Context, data []byte, folder string) (*StoredBlob, error)
	// Delete removes a stored asset and reports whether it existed.
	Delete(ctx context.Context, assetID string) (bool, error)
}
