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

package services

import (
	"io/fs"
	"net/http"

	profile_http "profilesvc/core/profile/adapters/rest"
	"profilesvc/modules/middleware"
	"profilesvc/modules/server"
)

const UploadImagePath = "/user/profile/upload-image"

var _ server.RegistrableService = (*ProfileAPIService)(nil)

// ProfileAPIService mounts the profile API and validates its requests
// against the OpenAPI document.
type ProfileAPIService struct {
	specPath string
	specFS   fs.FS
	handler  *profile_http.ProfileAPI
}

func NewProfileAPIService(h *profile_http.ProfileAPI, specFS fs.FS, specPath string) *ProfileAPIService {
	return &ProfileAPIService{specFS: specFS, specPath: specPath, handler: h}
}

func (s *ProfileAPIService) Register(mux *http.ServeMux) {
	h := s.handler
	mux.HandleFunc("GET /healthz", h.Healthz)

	mux.HandleFunc("GET /user/complete_profile", h.GetReferenceData)
	mux.HandleFunc("POST /user/complete_profile", h.CreateProfile)

	mux.HandleFunc("GET /user/profile", h.GetOwnProfile)
	mux.HandleFunc("PATCH /user/profile", h.ModifyProfile)
	mux.HandleFunc("DELETE /user/profile", h.DeleteProfile)

	mux.HandleFunc("POST "+UploadImagePath, h.UploadImage)
	mux.HandleFunc("DELETE /user/profile/image/{image_id}", h.DeleteImage)

	mux.HandleFunc("GET /user/{user_id}/interests", h.ListInterests)
	mux.HandleFunc("GET /user/profiles", h.ListProfiles)
	mux.HandleFunc("GET /user/profiles/recommend/{category}", h.Recommend)
}

// Middlewares validates everything under /user/ except the multipart
// upload, which the handler checks itself.
func (s *ProfileAPIService) Middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.OpenAPIValidation(
			s.specFS, s.specPath,
			profile_http.ValidationErrorHandler,
			profile_http.SpecLoadErrorHandler,
			middleware.ValidateOnly("/user/"),
			middleware.SkipPaths(UploadImagePath),
		),
	}
}
