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

package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	t.Run("plaintext", func(t *testing.T) {
		opt, err := clientOptions(&RedisConfig{
			URL:              "redis://:secret@cache:6379/2",
			ClientName:       "profile-service",
			SkipTLSVerify:    true,
			ConnWriteTimeout: 3 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"cache:6379"}, opt.InitAddress)
		assert.Equal(t, 2, opt.SelectDB)
		assert.Equal(t, "secret", opt.Password)
		assert.Equal(t, "profile-service", opt.ClientName)
		assert.True(t, opt.DisableCache)
		assert.Equal(t, 3*time.Second, opt.ConnWriteTimeout)
		assert.Nil(t, opt.TLSConfig)
	})

	t.Run("tls with skip verify", func(t *testing.T) {
		opt, err := clientOptions(&RedisConfig{
			URL:           "rediss://cache:6380",
			RequireTLS:    true,
			SkipTLSVerify: true,
		})
		require.NoError(t, err)
		require.NotNil(t, opt.TLSConfig)
		assert.True(t, opt.TLSConfig.InsecureSkipVerify)
	})

	t.Run("tls required", func(t *testing.T) {
		_, err := clientOptions(&RedisConfig{URL: "redis://cache:6379", RequireTLS: true})
		assert.Error(t, err)
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := clientOptions(&RedisConfig{})
		assert.Error(t, err)
	})
}
