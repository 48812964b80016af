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

package counter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"profilesvc/modules/db/redis"
	"profilesvc/modules/db/redis/counter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server, e.g. REDIS_TEST_URL=redis://localhost:6379/0
func TestRedisCounter(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := redis.NewRueidisClient(ctx, &redis.RedisConfig{
		Enabled:     true,
		URL:         url,
		ClientName:  "counter-test",
		PingTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	store := counter.NewRedisCounterStore(client, "counter-test-"+time.Now().Format("150405.000000000"))
	key := "alice:1"

	n, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	for want := int64(1); want <= 3; want++ {
		n, err = store.Incr(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = store.Incr(ctx, "short", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		n, err := store.Get(ctx, "short")
		return err == nil && n == 0
	}, 2*time.Second, 20*time.Millisecond)
}
