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

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics holds the server side HTTP instruments.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	size     metric.Int64Histogram
}

// RequestSample is one served request as seen by the outermost middleware.
type RequestSample struct {
	Method string
	// Route is the mux pattern, e.g. "GET /user/{user_id}/interests".
	Route    string
	Status   int
	Duration time.Duration
	Bytes    int64
}

// NewHTTPMetrics registers the HTTP instruments on the global meter provider.
func NewHTTPMetrics(serviceName string) (*HTTPMetrics, error) {
	meter := otel.Meter(serviceName)

	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Served HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time to serve an HTTP request"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	size, err := meter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("HTTP response body size"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration, size: size}, nil
}

func (m *HTTPMetrics) Record(ctx context.Context, s RequestSample) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", s.Method),
		attribute.String("http.route", s.Route),
		attribute.Int("http.response.status_code", s.Status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, s.Duration.Seconds(), attrs)
	if s.Bytes > 0 {
		m.size.Record(ctx, s.Bytes, attrs)
	}
}

// BlobMetrics instruments calls to the image blob store.
type BlobMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	bytes    metric.Int64Counter
}

func NewBlobMetrics(serviceName string) (*BlobMetrics, error) {
	meter := otel.Meter(serviceName)

	calls, err := meter.Int64Counter(
		"blob_store_calls_total",
		metric.WithDescription("Blob store calls by operation and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"blob_store_duration",
		metric.WithDescription("Blob store call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	bytes, err := meter.Int64Counter(
		"blob_store_uploaded_bytes_total",
		metric.WithDescription("Bytes successfully uploaded to the blob store"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &BlobMetrics{calls: calls, duration: duration, bytes: bytes}, nil
}

// RecordCall records one blob store call. Only successful uploads count
// towards the uploaded bytes.
func (m *BlobMetrics) RecordCall(ctx context.Context, op string, err error, elapsed time.Duration, size int64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("blob_operation", op),
		attribute.String("blob_outcome", outcome),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if err == nil && size > 0 {
		m.bytes.Add(ctx, size, metric.WithAttributes(attribute.String("blob_operation", op)))
	}
}
