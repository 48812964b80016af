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

package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"profilesvc/core/profile/domain"
	"profilesvc/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

var (
	_ domain.ProfileWriteStore = (*PostgresProfileWriter)(nil)
	_ domain.ProfileWriteTx    = (*profileWriterTx)(nil)
)

type (
	// PostgresProfileWriter runs every write on the primary inside a
	// transaction obtained from the pool.
	PostgresProfileWriter struct {
		txm db.TxManager
	}

	profileWriterTx struct {
		exec bob.Executor
	}
)

func NewPostgresProfileWriter(txm db.TxManager) *PostgresProfileWriter {
	return &PostgresProfileWriter{txm: txm}
}

// WithTx implements domain.ProfileWriteStore.
func (w *PostgresProfileWriter) WithTx(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.ProfileWriteTx) error,
) error {
	return w.txm.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &profileWriterTx{exec: q})
	})
}

// WithTimeoutTx implements domain.ProfileWriteStore.
func (w *PostgresProfileWriter) WithTimeoutTx(
	ctx context.Context,
	timeout time.Duration,
	fn func(ctx context.Context, tx domain.ProfileWriteTx) error,
) error {
	return w.txm.WithTimeoutTx(ctx, timeout, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &profileWriterTx{exec: q})
	})
}

// CreateProfile implements domain.ProfileWriteTx.
//
// The existence check only gives a friendlier path. Two concurrent creates
// are settled by the primary key, which surfaces as ErrDuplicateProfile too.
func (t *profileWriterTx) CreateProfile(ctx context.Context, params *domain.CreateProfileParams) error {
	err := profileExists(ctx, t.exec, params.ID, false)
	switch {
	case err == nil:
		return domain.ErrDuplicateProfile
	case !errors.Is(err, domain.ErrProfileNotFound):
		return err
	}

	insert := psql.Insert(
		im.Into(profilesTable, "id", "username", "birthday", "introduction", "gender_id", "sexual_orientation_id"),
		im.Values(psql.Arg(
			params.ID,
			params.Username,
			params.Birthday,
			params.Introduction,
			params.GenderID,
			params.SexualOrientationID,
		)),
	)
	if _, err := bob.Exec(ctx, t.exec, insert); err != nil {
		return wrapProfileError(err)
	}

	if err := t.linkInterests(ctx, params.ID, params.InterestIDs); err != nil {
		return err
	}

	if len(params.ImageURLs) == 0 {
		return nil
	}
	images := psql.Insert(im.Into(imagesTable, "profile_id", "image_url", "is_primary"))
	for i, url := range params.ImageURLs {
		images.Apply(im.Values(psql.Arg(params.ID, url, i == 0)))
	}
	_, err = bob.Exec(ctx, t.exec, images)
	return wrapProfileError(err)
}

// GetProfileByID implements domain.ProfileWriteTx. It reads through the
// transaction, so it sees the primary and any uncommitted change.
func (t *profileWriterTx) GetProfileByID(ctx context.Context, id int64) (*domain.Profile, error) {
	return loadProfile(ctx, t.exec, id)
}

// ModifyProfile implements domain.ProfileWriteTx.
// The SET clause is built from the fields present in params.
func (t *profileWriterTx) ModifyProfile(ctx context.Context, params *domain.ModifyProfileParams) error {
	if err := profileExists(ctx, t.exec, params.ID, true); err != nil {
		return err
	}

	if params.HasScalarChanges() {
		query := psql.Update(
			um.Table(profilesTable),
			um.Where(psql.Quote("id").EQ(psql.Arg(params.ID))),
		)
		if params.Username.HasValue() {
			query.Apply(um.SetCol("username").ToArg(params.Username.Value))
		}
		if params.Birthday.HasValue() {
			query.Apply(um.SetCol("birthday").ToArg(params.Birthday.Value))
		}
		if params.Introduction.HasValue() {
			query.Apply(um.SetCol("introduction").ToArg(params.Introduction.Value))
		}
		if params.GenderID.Set {
			if params.GenderID.Null {
				query.Apply(um.SetCol("gender_id").To(psql.Raw("NULL")))
			} else {
				query.Apply(um.SetCol("gender_id").ToArg(params.GenderID.Value))
			}
		}
		if params.SexualOrientationID.HasValue() {
			query.Apply(um.SetCol("sexual_orientation_id").ToArg(params.SexualOrientationID.Value))
		}

		if _, err := bob.Exec(ctx, t.exec, query); err != nil {
			return wrapProfileError(err)
		}
	}

	if !params.InterestIDs.Set {
		return nil
	}
	if err := t.unlinkInterests(ctx, params.ID); err != nil {
		return err
	}
	return t.linkInterests(ctx, params.ID, params.InterestIDs.Value)
}

// DeleteProfile implements domain.ProfileWriteTx.
func (t *profileWriterTx) DeleteProfile(ctx context.Context, id int64) error {
	if err := profileExists(ctx, t.exec, id, true); err != nil {
		return err
	}
	if err := t.unlinkInterests(ctx, id); err != nil {
		return err
	}

	images := psql.Delete(
		dm.From(imagesTable),
		dm.Where(psql.Quote("profile_id").EQ(psql.Arg(id))),
	)
	if _, err := bob.Exec(ctx, t.exec, images); err != nil {
		return wrapProfileError(err)
	}

	profile := psql.Delete(
		dm.From(profilesTable),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	_, err := bob.Exec(ctx, t.exec, profile)
	return wrapProfileError(err)
}

// AddImage implements domain.ProfileWriteTx. The profile row stays locked
// until commit so concurrent uploads count images one at a time.
func (t *profileWriterTx) AddImage(ctx context.Context, profileID int64, url string) (*domain.Image, error) {
	if err := profileExists(ctx, t.exec, profileID, true); err != nil {
		return nil, err
	}

	count := psql.Select(
		sm.Columns("COUNT(*)"),
		sm.From(imagesTable),
		sm.Where(psql.Quote("profile_id").EQ(psql.Arg(profileID))),
	)
	n, err := bob.One(ctx, t.exec, count, scan.SingleColumnMapper[int64])
	if err != nil {
		return nil, wrapProfileError(err)
	}
	if n >= domain.MaxImages {
		return nil, domain.ErrImageLimit
	}

	insert := psql.Insert(
		im.Into(imagesTable, "profile_id", "image_url", "is_primary"),
		im.Values(psql.Arg(profileID, url, n == 0)),
		im.Returning("id", "profile_id", "image_url", "is_primary"),
	)
	row, err := bob.One(ctx, t.exec, insert, scan.StructMapper[ImageRow]())
	if err != nil {
		return nil, wrapProfileError(err)
	}

	img := toImage(row)
	return &img, nil
}

// RemoveImage implements domain.ProfileWriteTx.
func (t *profileWriterTx) RemoveImage(ctx context.Context, profileID, imageID int64) error {
	query := psql.Delete(
		dm.From(imagesTable),
		dm.Where(psql.Quote("id").EQ(psql.Arg(imageID))),
		dm.Where(psql.Quote("profile_id").EQ(psql.Arg(profileID))),
		dm.Returning("id"),
	)
	_, err := bob.One(ctx, t.exec, query, scan.SingleColumnMapper[int64])
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrImageNotFound
	}
	return wrapProfileError(err)
}

func (t *profileWriterTx) linkInterests(ctx context.Context, profileID int64, interestIDs []int) error {
	if len(interestIDs) == 0 {
		return nil
	}
	query := psql.Insert(im.Into(linksTable, "profile_id", "interest_id"))
	for _, id := range interestIDs {
		query.Apply(im.Values(psql.Arg(profileID, id)))
	}
	_, err := bob.Exec(ctx, t.exec, query)
	return wrapProfileError(err)
}

func (t *profileWriterTx) unlinkInterests(ctx context.Context, profileID int64) error {
	query := psql.Delete(
		dm.From(linksTable),
		dm.Where(psql.Quote("profile_id").EQ(psql.Arg(profileID))),
	)
	_, err := bob.Exec(ctx, t.exec, query)
	return wrapProfileError(err)
}
