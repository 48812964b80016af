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

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"profilesvc/core/profile/domain"
	"profilesvc/modules/middleware"
	"profilesvc/modules/middleware/problem"
)

// ProblemFromDomainError maps a domain error to a problem document.
// validationStatus is the status used for ErrInvalidData: request bodies
// answer 422, uploads answer 400.
func ProblemFromDomainError(err error, validationStatus int) *problem.Problem {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return problem.FromStatus(validationStatus, ve.Reason, problem.WithInvalidParam(ve.Field, ve.Reason))
	case errors.Is(err, domain.ErrInvalidData):
		return problem.FromStatus(validationStatus, "invalid data")
	case errors.Is(err, domain.ErrProfileNotFound):
		return problem.NotFound("Profile not found")
	case errors.Is(err, domain.ErrImageNotFound):
		return problem.NotFound("Image not found")
	case errors.Is(err, domain.ErrUnknownCategory):
		return problem.NotFound("Unknown recommendation category")
	case errors.Is(err, domain.ErrDuplicateProfile):
		return problem.BadRequest("Profile already exists")
	case errors.Is(err, domain.ErrImageLimit):
		return problem.BadRequest("Maximum 6 images allowed")
	case errors.Is(err, domain.ErrUpstream):
		return problem.Internal("Failed to upload image")
	default:
		return problem.Internal("server error")
	}
}

func writeDomainError(ctx context.Context, w http.ResponseWriter, err error, validationStatus int) {
	p := ProblemFromDomainError(err, validationStatus)
	if p.Status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", slog.Any("error", err))
	}
	writeProblem(ctx, w, p)
}

func writeProblem(ctx context.Context, w http.ResponseWriter, p *problem.Problem) {
	if id := middleware.RequestIDFrom(ctx); id != "" {
		problem.WithTraceID(id)(p)
	}
	problem.Write(w, p)
}

func invalidParam(ctx context.Context, w http.ResponseWriter, status int, name, reason string) {
	writeProblem(ctx, w, problem.FromStatus(status, reason, problem.WithInvalidParam(name, reason)))
}

// RecoverHTTPMiddleware answers a recovered panic with a 500 problem.
func RecoverHTTPMiddleware() func(http.Handler) http.Handler {
	return middleware.Recovery(func(w http.ResponseWriter, r *http.Request, _ any) {
		writeProblem(r.Context(), w, problem.Internal("server error"))
	})
}

// ValidationErrorHandler turns request validation failures into a problem
// listing every offending field.
func ValidationErrorHandler(ctx context.Context, err error, w http.ResponseWriter, _ *http.Request, statusCode int) {
	p := problem.FromStatus(statusCode, "validation failed")
	for _, ve := range middleware.ExtractValidationErrors(err) {
		problem.WithInvalidParam(ve.Field, ve.Reason)(p)
	}
	writeProblem(ctx, w, p)
}

func SpecLoadErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "openapi document failed to load", slog.Any("error", err))
	writeProblem(r.Context(), w, problem.Internal("server error"))
}
