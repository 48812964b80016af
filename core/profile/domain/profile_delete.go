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
	"log/slog"
)

// DeleteProfile removes the profile along with its interest links and
// image rows. Stored blobs are left untouched.
func (app *Application) DeleteProfile(ctx context.Context, id int64) error {
	err := app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx ProfileWriteTx) error {
		return tx.DeleteProfile(ctx, id)
	})
	if err != nil {
		return settle(ctx, err, ErrProfileNotFound)
	}
	slog.DebugContext(ctx, "deleted profile", slog.Int64("id", id))
	return nil
}
