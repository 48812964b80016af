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
	"context"
	"errors"
	"log/slog"
	"strings"
)

func (app *Application) CreateProfile(ctx context.Context, params *CreateProfileParams) error {
	if err := app.validateCreate(params); err != nil {
		slog.DebugContext(ctx, "rejected profile", slog.Int64("id", params.ID), slog.Any("error", err))
		return err
	}

	err := app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx ProfileWriteTx) error {
		return tx.CreateProfile(ctx, params)
	})
	if err == nil {
		slog.DebugContext(ctx, "created profile",
			slog.Int64("id", params.ID),
			slog.Int("interests", len(params.InterestIDs)),
			slog.Int("images", len(params.ImageURLs)))
		return nil
	}
	if errors.Is(err, ErrDuplicateProfile) {
		slog.InfoContext(ctx, "duplicate entry", slog.Int64("id", params.ID))
		return ErrDuplicateProfile
	}
	return settle(ctx, err, ErrInvalidData)
}

func (app *Application) validateCreate(params *CreateProfileParams) error {
	params.Username = strings.TrimSpace(params.Username)
	if params.Username == "" {
		return invalid("username", "Username must not be empty")
	}
	if err := validateBirthday(params.Birthday, app.now()); err != nil {
		return err
	}
	if len(params.ImageURLs) > MaxImages {
		return invalid("image_urls", "Maximum 6 images allowed")
	}
	return nil
}

// settle passes known domain errors through unchanged and logs anything
// else, collapsing it into ErrUnhandled.
func settle(ctx context.Context, err error, known ...error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	slog.ErrorContext(ctx, "unexpected error", slog.Any("error", err))
	return ErrUnhandled
}
