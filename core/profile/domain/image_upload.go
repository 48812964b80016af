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
	"fmt"
	"log/slog"
	"strings"
)

// UploadImage stores the bytes in the blob store and records the
// resulting URL against the profile.
//
// Validation and the image count check both happen before the blob store
// is contacted, and a blob store failure leaves the database untouched.
func (app *Application) UploadImage(ctx context.Context, params *UploadImageParams) (*Image, error) {
	if err := validateUpload(params); err != nil {
		return nil, err
	}

	count, err := app.reader.CountImages(ctx, params.ProfileID)
	if err != nil {
		return nil, settle(ctx, err, ErrProfileNotFound)
	}
	if count >= MaxImages {
		return nil, ErrImageLimit
	}

	blob, err := app.blobs.Upload(ctx, params.Data, ImageFolder)
	if err != nil {
		slog.ErrorContext(ctx, "blob upload failed",
			slog.Int64("profile_id", params.ProfileID),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var img *Image
	err = app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx ProfileWriteTx) error {
		added, err := tx.AddImage(ctx, params.ProfileID, blob.URL)
		if err != nil {
			return err
		}
		img = added
		return nil
	})
	if err != nil {
		app.discardBlob(ctx, blob)
		return nil, settle(ctx, err, ErrProfileNotFound, ErrImageLimit)
	}

	slog.DebugContext(ctx, "added image",
		slog.Int64("profile_id", params.ProfileID),
		slog.Int64("image_id", img.ID),
		slog.Bool("primary", img.IsPrimary))
	return img, nil
}

func validateUpload(params *UploadImageParams) error {
	if !strings.HasPrefix(params.ContentType, "image/") {
		return invalid("file", "File must be an image")
	}
	if len(params.Data) == 0 {
		return invalid("file", "File is empty")
	}
	if len(params.Data) > MaxImageBytes {
		return invalid("file", "File size must not exceed 5MB")
	}
	return nil
}

// discardBlob removes a blob whose metadata row could not be written, so a
// rejected upload does not leave an orphan behind.
func (app *Application) discardBlob(ctx context.Context, blob *StoredBlob) {
	ctx = context.WithoutCancel(ctx)
	ok, err := app.blobs.Delete(ctx, blob.AssetID)
	if err != nil || !ok {
		slog.WarnContext(ctx, "orphaned blob",
			slog.String("asset_id", blob.AssetID),
			slog.Any("error", err))
	}
}
