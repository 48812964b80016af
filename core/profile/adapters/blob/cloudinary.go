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

package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"profilesvc/core/profile/domain"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var _ domain.BlobStore = (*CloudinaryStore)(nil)

type (
	// Note: For env parsing to work, we must export all struct fields
	CloudinaryConfig struct {
		CloudName string `env:"CLOUD_NAME"`
		APIKey    string `env:"API_KEY"`
		APISecret string `env:"API_SECRET"`
	}

	CloudinaryStore struct {
		cld *cloudinary.Cloudinary
	}
)

func (c *CloudinaryConfig) Validate() error {
	if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
		return errors.New("cloudinary: CLOUD_NAME, API_KEY and API_SECRET are required")
	}
	return nil
}

func NewCloudinaryStore(cfg *CloudinaryConfig) (*CloudinaryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload implements domain.BlobStore. The https delivery URL is returned.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder string) (*domain.StoredBlob, error) {
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return nil, errors.New("cloudinary upload: empty secure_url")
	}
	return &domain.StoredBlob{URL: res.SecureURL, AssetID: res.PublicID}, nil
}

// Delete implements domain.BlobStore.
func (s *CloudinaryStore) Delete(ctx context.Context, assetID string) (bool, error) {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     assetID,
		ResourceType: "image",
	})
	if err != nil {
		return false, fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return false, fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return res.Result == "ok", nil
}
