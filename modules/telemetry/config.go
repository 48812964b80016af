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
	"strings"
	"time"
)

type Mode string

const (
	ModeDetect Mode = "detect"
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
	// ModeOff keeps the global no-op providers.
	ModeOff Mode = "off"
)

type Config struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"profile-service"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string `env:"ENVIRONMENT" envDefault:"local"`

	// Either "http://otel-collector:4318" or a bare "otel-collector:4318".
	// When empty the OTEL_EXPORTER_OTLP_* variables apply.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// "grpc" or "http/protobuf"
	Protocol string `env:"OTEL_EXPORTER_OTLP_PROTOCOL" envDefault:"http/protobuf"`
	Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`

	// 0..1: sampling ratio (0=never,1=all,else parentbased+ratio).
	SamplerRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"1"`

	StartupTimeout time.Duration `env:"OTEL_STARTUP_TIMEOUT" envDefault:"5s"`

	Mode Mode `env:"OTEL_MODE" envDefault:"off"`

	DisableMetrics bool `env:"OTEL_DISABLE_METRICS" envDefault:"false"`

	// Extra resource attributes.
	ResourceAttrs map[string]string `env:"OTEL_EXTRA_RESOURCE_ATTRIBUTES" envSeparator:"," envKeyValSeparator:"="`
}

func (c *Config) grpc() bool {
	return c.Protocol == "grpc"
}

// otlpTarget is where one signal is exported. Both fields empty means the
// exporter falls back to the OTEL_EXPORTER_OTLP_* variables.
type otlpTarget struct {
	url      string
	hostPort string
}

// target resolves OTLPEndpoint for one signal. The HTTP exporters take a
// full URL, so the signal path is appended to schemed endpoints there.
func (c *Config) target(signalPath string) otlpTarget {
	ep := strings.TrimSuffix(c.OTLPEndpoint, "/")
	switch {
	case ep == "":
		return otlpTarget{}
	case !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://"):
		return otlpTarget{hostPort: ep}
	case c.grpc():
		return otlpTarget{url: ep}
	default:
		return otlpTarget{url: ep + signalPath}
	}
}
