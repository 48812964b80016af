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

// DeleteImage removes the image row only. The blob stays in the blob store
// and no remaining image is promoted to primary.
func (app *Application) DeleteImage(ctx context.Context, profileID, imageID int64) error {
	err := app.writer.WithTimeoutTx(ctx, app.txTimeout, func(ctx context.Context, tx ProfileWriteTx) error {
		return tx.RemoveImage(ctx, profileID, imageID)
	})
	if err != nil {
		return settle(ctx, err, ErrImageNotFound, ErrProfileNotFound)
	}
	slog.DebugContext(ctx, "deleted image", slog.Int64("profile_id", profileID), slog.Int64("image_id", imageID))
	return nil
}
