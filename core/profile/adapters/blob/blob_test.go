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
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"profilesvc/core/profile/domain"
	"profilesvc/modules/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(&LocalConfig{Dir: t.TempDir(), BaseURL: "http://files.test/uploads/"})
	require.NoError(t, err)
	return s
}

func TestLocalStoreUploadAndServe(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	blob, err := s.Upload(ctx, pngBytes, domain.ImageFolder)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(blob.AssetID, "profile_images/"))
	assert.True(t, strings.HasSuffix(blob.AssetID, ".png"))
	assert.Equal(t, "http://files.test/uploads/"+blob.AssetID, blob.URL)

	stored, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(blob.AssetID)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	mux := http.NewServeMux()
	s.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+blob.AssetID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, pngBytes, body)

	ok, err := s.Delete(ctx, blob.AssetID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, blob.AssetID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStoreRejectsNonImages(t *testing.T) {
	s := newLocal(t)
	_, err := s.Upload(context.Background(), []byte("just some text"), domain.ImageFolder)
	require.Error(t, err)
}

func TestLocalStoreKeepsFoldersInsideRoot(t *testing.T) {
	s := newLocal(t)
	blob, err := s.Upload(context.Background(), pngBytes, "../../escape")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(blob.AssetID, "escape/"))
	_, err = os.Stat(filepath.Join(s.root, filepath.FromSlash(blob.AssetID)))
	require.NoError(t, err)
}

type failingStore struct{}

func (failingStore) Upload(context.Context, []byte, string) (*domain.StoredBlob, error) {
	return nil, errors.New("unavailable")
}

func (failingStore) Delete(context.Context, string) (bool, error) {
	return false, errors.New("unavailable")
}

func TestInstrumentRecordsCalls(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	metrics, err := telemetry.NewBlobMetrics("blob-test")
	require.NoError(t, err)

	store := Instrument(failingStore{}, metrics)
	_, err = store.Upload(context.Background(), pngBytes, domain.ImageFolder)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names = append(names, m.Name)
		}
	}
	assert.Contains(t, names, "blob_store_calls_total")
	assert.Contains(t, names, "blob_store_duration")
}

func TestInstrumentWithoutMetricsIsTransparent(t *testing.T) {
	s := newLocal(t)
	assert.Same(t, s, Instrument(s, nil))
}

func TestCloudinaryConfigValidate(t *testing.T) {
	cfg := CloudinaryConfig{CloudName: "demo", APIKey: "key"}
	require.Error(t, cfg.Validate())

	cfg.APISecret = "secret"
	require.NoError(t, cfg.Validate())
}
