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
	"errors"
	"io"
	"net/http"

	"profilesvc/core/profile/domain"
	"profilesvc/modules/api/serde"
)

const (
	uploadField = "file"
	// multipartOverhead leaves room for boundaries and part headers.
	multipartOverhead = 64 << 10
)

// UploadImage stores a multipart "file" part as a new profile image.
// Returns 201 with the stored image, 400 for a bad file or when the
// profile is full, 500 when the blob store fails.
func (p *ProfileAPI) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxImageBytes+multipartOverhead)
	f, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			invalidParam(ctx, w, http.StatusBadRequest, uploadField, "File size must not exceed 5MB")
			return
		}
		invalidParam(ctx, w, http.StatusBadRequest, uploadField, "is required")
		return
	}
	defer f.Close()

	// one byte past the limit is enough for the size check
	data, err := io.ReadAll(io.LimitReader(f, domain.MaxImageBytes+1))
	if err != nil {
		invalidParam(ctx, w, http.StatusBadRequest, uploadField, "could not be read")
		return
	}

	img, err := p.app.UploadImage(ctx, &domain.UploadImageParams{
		ProfileID:   userID,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeDomainError(ctx, w, err, http.StatusBadRequest)
		return
	}

	serde.WriteJSON(w, http.StatusCreated, UploadImageResponse{
		ImageID:   img.ID,
		ImageURL:  img.URL,
		IsPrimary: img.IsPrimary,
	})
}

// DeleteImage removes an image row owned by the caller. The blob itself is
// left in the store.
func (p *ProfileAPI) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	imageID, ok := pathID(w, r, "image_id")
	if !ok {
		return
	}
	if err := p.app.DeleteImage(r.Context(), userID, imageID); err != nil {
		writeDomainError(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	serde.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Image deleted successfully"})
}
