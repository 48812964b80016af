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
	"time"

	"profilesvc/modules/clock"
)

const (
	MinAge = 18
	MaxAge = 120

	// MaxImages caps the number of images a profile may hold.
	MaxImages = 6
	// MaxImageBytes caps a single uploaded image.
	MaxImageBytes = 5 << 20

	// ImageFolder is the blob store folder images are uploaded into.
	ImageFolder = "profile_images"
)

type (
	Application struct {
		reader ProfileReadStore
		writer ProfileWriteStore
		blobs  BlobStore
		clock  clock.Clock

		txTimeout time.Duration
	}

	// Profile is the joined view of a profile row: its own columns plus
	// the reference names, interest names and images that belong to it.
	Profile struct {
		ID           int64
		Username     string
		Birthday     time.Time
		Introduction string

		GenderID   *int
		GenderName string

		SexualOrientationID   int
		SexualOrientationName string

		Interests []string
		Images    []Image

		// Age is derived from Birthday when the profile is served.
		Age int
	}

	Image struct {
		ID        int64
		ProfileID int64
		URL       string
		IsPrimary bool
	}

	Gender struct {
		ID   int
		Name string
	}

	SexualOrientation struct {
		ID   int
		Name string
	}

	Interest struct {
		ID   int
		Name string
	}

	// ReferenceData holds the lookup tables a client needs to complete
	// a profile.
	ReferenceData struct {
		Genders            []Gender
		SexualOrientations []SexualOrientation
		Interests          []Interest
	}
)

// PrimaryImage returns the image flagged primary, if any.
func (p *Profile) PrimaryImage() (Image, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return Image{}, false
}

func (p *Profile) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

func (p *Profile) ImageIDs() []int64 {
	ids := make([]int64, 0, len(p.Images))
	for _, img := range p.Images {
		ids = append(ids, img.ID)
	}
	return ids
}

type (
	CreateProfileParams struct {
		ID                  int64
		Username            string
		Birthday            time.Time
		Introduction        string
		GenderID            *int
		SexualOrientationID int

		// InterestIDs are stored as given, unknown ids included.
		InterestIDs []int
		// ImageURLs are stored in order, the first one becomes primary.
		ImageURLs []string
	}

	// ModifyProfileParams carries a partial update. Unset fields are left
	// untouched.
	ModifyProfileParams struct {
		ID                  int64
		Username            Patch[string]
		Birthday            Patch[time.Time]
		Introduction        Patch[string]
		GenderID            Patch[int]
		SexualOrientationID Patch[int]
		// InterestIDs replaces every interest link when set, even with an
		// empty list.
		InterestIDs Patch[[]int]
	}

	// Patch is a tri-state field: unset, explicitly null, or a value.
	Patch[T any] struct {
		Set   bool
		Null  bool
		Value T
	}

	// StoredBlob is what the blob store hands back for an upload.
	StoredBlob struct {
		URL     string
		AssetID string
	}

	// UploadImageParams describes an image received from a client.
	UploadImageParams struct {
		ProfileID   int64
		ContentType string
		Data        []byte
	}
)

func Value[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: v}
}

func Null[T any]() Patch[T] {
	return Patch[T]{Set: true, Null: true}
}

// HasValue reports whether the patch carries a non-null value.
func (p Patch[T]) HasValue() bool {
	return p.Set && !p.Null
}

// Empty reports whether no field at all is being modified.
func (p *ModifyProfileParams) Empty() bool {
	return !p.Username.Set && !p.Birthday.Set && !p.Introduction.Set &&
		!p.GenderID.Set && !p.SexualOrientationID.Set && !p.InterestIDs.Set
}

// HasScalarChanges reports whether any column of the profile row changes.
func (p *ModifyProfileParams) HasScalarChanges() bool {
	return p.Username.Set || p.Birthday.Set || p.Introduction.Set ||
		p.GenderID.Set || p.SexualOrientationID.Set
}
