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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"profilesvc/core/profile/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid/v5"
)

var _ domain.BlobStore = (*LocalStore)(nil)

type (
	LocalConfig struct {
		Dir string `env:"DIR" envDefault:"./uploads"`
		// BaseURL is the public prefix the stored files are served under.
		BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080/uploads"`
	}

	// LocalStore keeps blobs on the local filesystem and serves them back
	// over HTTP. Meant for development.
	LocalStore struct {
		root    string
		baseURL string
	}
)

func NewLocalStore(cfg *LocalConfig) (*LocalStore, error) {
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local blob store: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(cfg.BaseURL, "/")}, nil
}

// Upload implements domain.BlobStore. Files are named by a fresh UUIDv7
// and given the extension of their sniffed content type.
func (s *LocalStore) Upload(ctx context.Context, data []byte, folder string) (*domain.StoredBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("local blob store: refusing %s content", mt.String())
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	folder = path.Clean("/" + folder)[1:]
	assetID := path.Join(folder, id.String()+mt.Extension())

	dir := filepath.Join(s.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.root, filepath.FromSlash(assetID)), data, 0o644); err != nil {
		return nil, err
	}

	return &domain.StoredBlob{URL: s.baseURL + "/" + assetID, AssetID: assetID}, nil
}

// Delete implements domain.BlobStore.
func (s *LocalStore) Delete(_ context.Context, assetID string) (bool, error) {
	name := path.Clean("/" + assetID)[1:]
	if name == "" {
		return false, nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Register serves the stored files under /uploads/.
func (s *LocalStore) Register(mux *http.ServeMux) {
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.root))))
}

func (s *LocalStore) Middlewares() []func(http.Handler) http.Handler {
	return nil
}
