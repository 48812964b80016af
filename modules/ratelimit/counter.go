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

package ratelimit

import (
	"context"
	"time"
)

// CounterStore keeps the per-window counters of the sliding window limiter.
type CounterStore interface {
	// Incr bumps the counter at key and returns the new value. ttl is the
	// minimum lifetime of a counter created by this call.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Get returns the counter at key, or 0 if it does not exist.
	Get(ctx context.Context, key string) (int64, error)
}
