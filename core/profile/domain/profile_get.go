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
)

func (app *Application) GetProfileByID(ctx context.Context, id int64) (*Profile, error) {
	prof, err := app.reader.GetProfileByID(ctx, id)
	if err != nil {
		return nil, settle(ctx, err, ErrProfileNotFound)
	}
	return app.withAge(prof), nil
}

func (app *Application) ListProfiles(ctx context.Context) ([]Profile, error) {
	profiles, err := app.reader.ListProfiles(ctx)
	if err != nil {
		return nil, settle(ctx, err)
	}
	for i := range profiles {
		app.withAge(&profiles[i])
	}
	return profiles, nil
}

func (app *Application) ListInterestNames(ctx context.Context, id int64) ([]string, error) {
	names, err := app.reader.ListInterestNames(ctx, id)
	if err != nil {
		return nil, settle(ctx, err, ErrProfileNotFound)
	}
	return names, nil
}

func (app *Application) ReferenceData(ctx context.Context) (*ReferenceData, error) {
	ref, err := app.reader.ListReferenceData(ctx)
	if err != nil {
		return nil, settle(ctx, err)
	}
	return ref, nil
}
