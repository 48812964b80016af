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
	"strings"
)

// ModifyProfile applies a partial update and returns the profile as stored
// afterwards.
func (app *Application) ModifyProfile(ctx context.Context, params *ModifyProfileParams) (*Profile, error) {
	if err := app.validateModify(params); err != nil {
		return nil, err
	}

	// read back inside the tx, replicas may still serve the old row
	var prof *Profile
	err := app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx ProfileWriteTx) error {
		if err := tx.ModifyProfile(ctx, params); err != nil {
			return err
		}
		var err error
		prof, err = tx.GetProfileByID(ctx, params.ID)
		return err
	})
	if err != nil {
		return nil, settle(ctx, err, ErrProfileNotFound, ErrInvalidData)
	}
	return app.withAge(prof), nil
}

func (app *Application) validateModify(params *ModifyProfileParams) error {
	if params.Empty() {
		return invalid("body", "no fields to update")
	}
	if params.Username.Set {
		params.Username.Value = strings.TrimSpace(params.Username.Value)
		if params.Username.Null || params.Username.Value == "" {
			return invalid("username", "Username must not be empty")
		}
	}
	if params.Birthday.Set {
		if params.Birthday.Null {
			return invalid("birthday", "Invalid birth date")
		}
		if err := validateBirthday(params.Birthday.Value, app.now()); err != nil {
			return err
		}
	}
	if params.Introduction.Null {
		return invalid("introduction", "must not be null")
	}
	if params.SexualOrientationID.Null {
		return invalid("sexual_orientation_id", "must not be null")
	}
	// a null interest list clears every link
	if params.InterestIDs.Null {
		params.InterestIDs = Value([]int{})
	}
	return nil
}
