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

const defaultTxTimeout = 5 * time.Second

type Option func(*Application)

// WithClock overrides the clock used to derive ages.
func WithClock(c clock.Clock) Option {
	return func(app *Application) {
		app.clock = c
	}
}

// WithTxTimeout bounds every write transaction.
func WithTxTimeout(d time.Duration) Option {
	return func(app *Application) {
		app.txTimeout = d
	}
}

func NewApp(reader ProfileReadStore, writer ProfileWriteStore, blobs BlobStore, opts ...Option) *Application {
	app := &Application{
		reader:    reader,
		writer:    writer,
		blobs:     blobs,
		clock:     clock.RealClockProvider(),
		txTimeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

func (app *Application) now() time.Time {
	return app.clock.Now()
}
