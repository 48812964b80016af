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

// Package problem writes RFC 7807 "application/problem+json" error bodies.
package problem

import (
	"encoding/json"
	"net/http"
)

const ContentType = "application/problem+json"

// Problem is the error body of every non 2xx response. Field names follow
// the Problem schema of the OpenAPI document.
type Problem struct {
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Status        int            `json:"status"`
	Detail        string         `json:"detail,omitempty"`
	TraceID       string         `json:"traceId,omitempty"`
	InvalidParams []InvalidParam `json:"invalidParams,omitempty"`
}

// InvalidParam names one rejected input and why.
type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Option func(*Problem)

func WithTraceID(id string) Option {
	return func(p *Problem) { p.TraceID = id }
}

func WithInvalidParam(name, reason string) Option {
	return func(p *Problem) {
		p.InvalidParams = append(p.InvalidParams, InvalidParam{Name: name, Reason: reason})
	}
}

// FromStatus builds a problem titled with the standard text of status.
func FromStatus(status int, detail string, opts ...Option) *Problem {
	title := http.StatusText(status)
	if title == "" {
		title = "Unknown Error"
	}
	p := &Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func BadRequest(detail string, opts ...Option) *Problem {
	return FromStatus(http.StatusBadRequest, detail, opts...)
}

func NotFound(detail string, opts ...Option) *Problem {
	return FromStatus(http.StatusNotFound, detail, opts...)
}

func UnprocessableEntity(detail string, opts ...Option) *Problem {
	return FromStatus(http.StatusUnprocessableEntity, detail, opts...)
}

func TooManyRequests(detail string, opts ...Option) *Problem {
	return FromStatus(http.StatusTooManyRequests, detail, opts...)
}

func Internal(detail string, opts ...Option) *Problem {
	return FromStatus(http.StatusInternalServerError, detail, opts...)
}

// Write sends p with its status. A nil problem becomes a bare 500.
func Write(w http.ResponseWriter, p *Problem) {
	if p == nil {
		p = Internal("")
	}
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
