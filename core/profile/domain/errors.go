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
	"errors"
	"fmt"
)

var (
	ErrDuplicateProfile = errors.New("profile already exists")
	ErrInvalidData      = errors.New("invalid data provided for profile operations")
	ErrUnhandled        = errors.New("unexpected error")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrImageLimit       = errors.New("maximum 6 images allowed")
	ErrUpstream         = errors.New("image storage unavailable")
	ErrUnknownCategory  = errors.New("unknown recommendation category")
)

// ValidationError names the offending field. It matches ErrInvalidData
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidData
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
