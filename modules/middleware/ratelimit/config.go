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
	"time"
)

type KeyStrategyId string

const (
	RemoteIpKeyStrategy KeyStrategyId = "remote_ip"
	// UserIdKeyStrategy keys on the user_id query parameter and falls back
	// to the remote address when it is missing.
	UserIdKeyStrategy KeyStrategyId = "user_id"
)

type (
	RestHTTPConfig struct {
		Enabled     bool          `env:"ENABLED" envDefault:"true"`
		KeyStrategy KeyStrategyId `env:"KEY_STRATEGY" envDefault:"remote_ip"`

		// DefaultPolicy applies to every route without an explicit rule.
		DefaultPolicy EndpointRule `envPrefix:"DEFAULT_"`
		// UploadPolicy guards the image upload route, which is the only one
		// that reaches the blob store.
		UploadPolicy UploadRule `envPrefix:"UPLOAD_"`

		AllowIfNoIdentifier bool `env:"ALLOW_IF_NO_ID" envDefault:"true"`
	}

	EndpointRule struct {
		Limit  int64         `env:"LIMIT" envDefault:"300"`
		Window time.Duration `env:"WINDOW" envDefault:"1m"`
	}

	// UploadRule only differs from EndpointRule in its defaults.
	UploadRule struct {
		Limit  int64         `env:"LIMIT" envDefault:"20"`
		Window time.Duration `env:"WINDOW" envDefault:"1m"`
	}
)

// UploadRoute is the route UploadPolicy is attached to.
const UploadRoute Pattern = "POST /user/profile/upload-image"

// Routes expands the config into explicit per-route rules.
func (c *RestHTTPConfig) Routes() map[Pattern]EndpointRule {
	return map[Pattern]EndpointRule{
		UploadRoute: EndpointRule(c.UploadPolicy),
	}
}
