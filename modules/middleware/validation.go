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

package middleware

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

type (
	// ValidationErrorHandler handles OpenAPI validation errors and writes an appropriate response.
	ValidationErrorHandler func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int)

	// SpecLoadErrorHandler handles errors that occur when loading the OpenAPI spec.
	SpecLoadErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

	// ValidationError is one offending field extracted from a validation error.
	ValidationError struct {
		Field  string
		Reason string
	}

	ValidationOption func(*validationConfig)

	validationConfig struct {
		prefixes []string
		skipped  map[string]struct{}
	}
)

// ValidateOnly restricts validation to request paths under the given
// prefixes. Requests outside of them pass through untouched.
func ValidateOnly(prefixes ...string) ValidationOption {
	return func(c *validationConfig) {
		c.prefixes = append(c.prefixes, prefixes...)
	}
}

// SkipPaths excludes exact request paths from validation. Handlers behind
// them validate their own input.
func SkipPaths(paths ...string) ValidationOption {
	return func(c *validationConfig) {
		if c.skipped == nil {
			c.skipped = make(map[string]struct{}, len(paths))
		}
		for _, p := range paths {
			c.skipped[p] = struct{}{}
		}
	}
}

// specCache holds parsed OpenAPI documents keyed by path.
var (
	specCacheMu sync.Mutex
	specCache   = make(map[string]*specCacheEntry)
)

type specCacheEntry struct {
	doc *openapi3.T
	err error
}

func loadSpec(fsys fs.FS, specPath string) (*openapi3.T, error) {
	specCacheMu.Lock()
	defer specCacheMu.Unlock()

	if entry, ok := specCache[specPath]; ok {
		return entry.doc, entry.err
	}

	data, err := fs.ReadFile(fsys, specPath)
	if err != nil {
		specCache[specPath] = &specCacheEntry{err: err}
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err == nil {
		err = doc.Validate(loader.Context)
	}

	specCache[specPath] = &specCacheEntry{doc: doc, err: err}
	return doc, err
}

// OpenAPIValidation creates a middleware that validates requests against an OpenAPI spec.
// The errorHandler is called when validation fails.
// The loadErrorHandler is called when the OpenAPI document fails to load.
func OpenAPIValidation(
	specFS fs.FS,
	specPath string,
	errorHandler ValidationErrorHandler,
	loadErrorHandler SpecLoadErrorHandler,
	opts ...ValidationOption,
) func(http.Handler) http.Handler {
	cfg := &validationConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	spec, err := loadSpec(specFS, specPath)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !cfg.covers(r) {
					next.ServeHTTP(w, r)
					return
				}
				loadErrorHandler(w, r, err)
			})
		}
	}

	validator := nethttpmiddleware.OapiRequestValidatorWithOptions(spec, &nethttpmiddleware.Options{
		Options:               openapi3filter.Options{MultiError: true},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			status := eopts.StatusCode
			if status == 0 {
				status = http.StatusBadRequest
			}
			// Body schema violations should be 422
			if hint := InferBodyValidationStatus(err); hint == http.StatusUnprocessableEntity {
				status = http.StatusUnprocessableEntity
			}
			errorHandler(ctx, err, w, r, status)
		},
	})

	return func(next http.Handler) http.Handler {
		validated := validator(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.covers(r) {
				next.ServeHTTP(w, r)
				return
			}
			validated.ServeHTTP(w, r)
		})
	}
}

func (c *validationConfig) covers(r *http.Request) bool {
	if _, ok := c.skipped[r.URL.Path]; ok {
		return false
	}
	if len(c.prefixes) == 0 {
		return true
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	return false
}

// ExtractValidationErrors flattens an OpenAPI validation error into
// field/reason pairs.
func ExtractValidationErrors(err error) []ValidationError {
	var me openapi3.MultiError
	if errors.As(err, &me) {
		var out []ValidationError
		for _, item := range me {
			out = append(out, ExtractValidationErrors(item)...)
		}
		return out
	}
	return []ValidationError{extractSingleError(err)}
}

func extractSingleError(err error) ValidationError {
	var re *openapi3filter.RequestError
	if errors.As(err, &re) {
		var se *openapi3.SchemaError
		if errors.As(re.Err, &se) {
			if re.Parameter != nil {
				return ValidationError{Field: re.Parameter.Name, Reason: se.Reason}
			}
			return ValidationError{Field: fieldFromPointer(se.JSONPointer()), Reason: se.Reason}
		}
		// do not echo input back, keep messages generic
		if re.Parameter != nil {
			return ValidationError{Field: re.Parameter.Name, Reason: SafeReason(re.Reason)}
		}
		return ValidationError{Field: "body", Reason: SafeReason(re.Reason)}
	}

	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return ValidationError{Field: fieldFromPointer(se.JSONPointer()), Reason: se.Reason}
	}

	var route *routers.RouteError
	if errors.As(err, &route) {
		return ValidationError{Field: "path", Reason: route.Reason}
	}

	return ValidationError{Field: "request", Reason: "invalid value"}
}

func fieldFromPointer(ptr []string) string {
	if len(ptr) == 0 || ptr[0] == "" || ptr[0] == "0" {
		return "body"
	}
	return ptr[0]
}

// InferBodyValidationStatus returns 422 for body/schema violations to avoid 400 on well-formed but semantically invalid payloads.
func InferBodyValidationStatus(err error) int {
	var me openapi3.MultiError
	if errors.As(err, &me) {
		for _, item := range me {
			if InferBodyValidationStatus(item) == http.StatusUnprocessableEntity {
				return http.StatusUnprocessableEntity
			}
		}
		return 0
	}

	var re *openapi3filter.RequestError
	if errors.As(err, &re) {
		// a multipart upload is judged by the handler, which answers 400
		if re.RequestBody != nil && re.Parameter == nil && !isMultipart(re) {
			return http.StatusUnprocessableEntity
		}
		return 0
	}

	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return http.StatusUnprocessableEntity
	}
	return 0
}

func isMultipart(re *openapi3filter.RequestError) bool {
	if re.Input == nil || re.Input.Request == nil {
		return false
	}
	return strings.HasPrefix(re.Input.Request.Header.Get("Content-Type"), "multipart/")
}

// SafeReason reduces verbose reasons to avoid reflecting input data back to the client.
func SafeReason(reason string) string {
	if reason == "" {
		return "invalid value"
	}
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "doesn't match schema"):
		return "doesn't match schema"
	case strings.Contains(lower, "must be one of"),
		strings.Contains(lower, "is required"),
		strings.Contains(lower, "value is required"):
		return reason
	}
	return "invalid value"
}
