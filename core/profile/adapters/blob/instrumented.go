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
	"time"

	"profilesvc/core/profile/domain"
	"profilesvc/modules/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ domain.BlobStore = (*InstrumentedStore)(nil)

const tracerName = "profilesvc/blob"

// InstrumentedStore traces and meters the calls made to another store.
type InstrumentedStore struct {
	next    domain.BlobStore
	metrics *telemetry.BlobMetrics
	tracer  trace.Tracer
}

func Instrument(next domain.BlobStore, metrics *telemetry.BlobMetrics) domain.BlobStore {
	if metrics == nil {
		return next
	}
	return &InstrumentedStore{next: next, metrics: metrics, tracer: otel.Tracer(tracerName)}
}

func (s *InstrumentedStore) Upload(ctx context.Context, data []byte, folder string) (*domain.StoredBlob, error) {
	ctx, span := s.tracer.Start(ctx, "blob.upload", trace.WithAttributes(
		attribute.String("blob.folder", folder),
		attribute.Int("blob.size", len(data)),
	))
	defer span.End()

	start := time.Now()
	stored, err := s.next.Upload(ctx, data, folder)
	s.metrics.RecordCall(ctx, "upload", err, time.Since(start), int64(len(data)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("blob.asset_id", stored.AssetID))
	return stored, nil
}

func (s *InstrumentedStore) Delete(ctx context.Context, assetID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "blob.delete", trace.WithAttributes(
		attribute.String("blob.asset_id", assetID),
	))
	defer span.End()

	start := time.Now()
	existed, err := s.next.Delete(ctx, assetID)
	s.metrics.RecordCall(ctx, "delete", err, time.Since(start), 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return existed, err
}
