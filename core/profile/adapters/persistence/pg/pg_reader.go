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
	"log/slog"

	"profilesvc/core/profile/domain"
	"profilesvc/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ domain.ProfileReadStore = (*PostgresProfileReader)(nil)

type PostgresProfileReader struct {
	pool db.ReaderConnectionManager // calls Reader() at runtime
}

// NewPostgresProfileReader creates a reader that picks a replica per call.
//
// Reads use dynamic queries instead of prepared statements so that every
// call can land on a different replica.
func NewPostgresProfileReader(pool db.ReaderConnectionManager) *PostgresProfileReader {
	return &PostgresProfileReader{pool: pool}
}

// GetProfileByID implements domain.ProfileReadStore.
func (r *PostgresProfileReader) GetProfileByID(ctx context.Context, id int64) (*domain.Profile, error) {
	return loadProfile(ctx, r.pool.Reader(), id)
}

// ListProfiles implements domain.ProfileReadStore.
func (r *PostgresProfileReader) ListProfiles(ctx context.Context, orientationIDs ...int) ([]domain.Profile, error) {
	var filters []bob.Expression
	if len(orientationIDs) > 0 {
		filters = append(filters, psql.Quote("p", "sexual_orientation_id").In(intArgs(orientationIDs)))
	}
	return hydrate(ctx, r.pool.Reader(), filters...)
}

// ListProfileIDsByOrientation implements domain.ProfileReadStore.
func (r *PostgresProfileReader) ListProfileIDsByOrientation(ctx context.Context, orientationIDs []int) ([]int64, error) {
	if len(orientationIDs) == 0 {
		return []int64{}, nil
	}

	query := psql.Select(
		sm.Columns("id"),
		sm.From(profilesTable),
		sm.Where(psql.Quote("sexual_orientation_id").In(intArgs(orientationIDs))),
		sm.OrderBy("id"),
	)

	ids, err := bob.All(ctx, r.pool.Reader(), query, scan.SingleColumnMapper[int64])
	if err != nil {
		slog.ErrorContext(ctx, "ListProfileIDsByOrientation query error", slog.Any("error", err))
		return nil, wrapProfileError(err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// ListInterestNames implements domain.ProfileReadStore.
func (r *PostgresProfileReader) ListInterestNames(ctx context.Context, profileID int64) ([]string, error) {
	exec := r.pool.Reader()
	if err := profileExists(ctx, exec, profileID, false); err != nil {
		return nil, err
	}

	links, err := interestLinks(ctx, exec, psql.Quote("p", "id").EQ(psql.Arg(profileID)))
	if err != nil {
		return nil, err
	}

	names := []string{}
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		if _, ok := seen[l.Name]; ok {
			continue
		}
		seen[l.Name] = struct{}{}
		names = append(names, l.Name)
	}
	return names, nil
}

// CountImages implements domain.ProfileReadStore.
func (r *PostgresProfileReader) CountImages(ctx context.Context, profileID int64) (int, error) {
	query := psql.Select(
		sm.Columns(psql.Raw("(SELECT COUNT(*) FROM profile_images i WHERE i.profile_id = p.id)")),
		sm.From(profilesTable).As("p"),
		sm.Where(psql.Quote("p", "id").EQ(psql.Arg(profileID))),
	)

	n, err := bob.One(ctx, r.pool.Reader(), query, scan.SingleColumnMapper[int64])
	if err != nil {
		return 0, wrapProfileError(err)
	}
	return int(n), nil
}

// ListReferenceData implements domain.ProfileReadStore.
func (r *PostgresProfileReader) ListReferenceData(ctx context.Context) (*domain.ReferenceData, error) {
	exec := r.pool.Reader()
	ref := &domain.ReferenceData{
		Genders:            []domain.Gender{},
		SexualOrientations: []domain.SexualOrientation{},
		Interests:          []domain.Interest{},
	}

	genders, err := referenceRows(ctx, exec, gendersTable, "gender_name")
	if err != nil {
		return nil, err
	}
	for _, row := range genders {
		ref.Genders = append(ref.Genders, domain.Gender{ID: int(row.ID), Name: row.Name})
	}

	orientations, err := referenceRows(ctx, exec, orientationsTable, "orientation_name")
	if err != nil {
		return nil, err
	}
	for _, row := range orientations {
		ref.SexualOrientations = append(ref.SexualOrientations, domain.SexualOrientation{ID: int(row.ID), Name: row.Name})
	}

	interests, err := referenceRows(ctx, exec, interestsTable, "interest_name")
	if err != nil {
		return nil, err
	}
	for _, row := range interests {
		ref.Interests = append(ref.Interests, domain.Interest{ID: int(row.ID), Name: row.Name})
	}

	return ref, nil
}

func referenceRows(ctx context.Context, exec bob.Executor, table, nameColumn string) ([]ReferenceRow, error) {
	query := psql.Select(
		sm.Columns("id", psql.Quote(nameColumn).As("name")),
		sm.From(table),
		sm.OrderBy("id"),
	)
	rows, err := bob.All(ctx, exec, query, scan.StructMapper[ReferenceRow]())
	if err != nil {
		slog.ErrorContext(ctx, "reference data query error", slog.String("table", table), slog.Any("error", err))
		return nil, wrapProfileError(err)
	}
	return rows, nil
}

// loadProfile returns the joined view of one profile as seen by exec.
func loadProfile(ctx context.Context, exec bob.Executor, id int64) (*domain.Profile, error) {
	profiles, err := hydrate(ctx, exec, psql.Quote("p", "id").EQ(psql.Arg(id)))
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return &profiles[0], nil
}

// hydrate loads the profiles matching filters, then their interests and
// images. Filters refer to the profiles table through the alias p.
func hydrate(ctx context.Context, exec bob.Executor, filters ...bob.Expression) ([]domain.Profile, error) {
	query := psql.Select(
		sm.Columns(
			psql.Quote("p", "id"),
			psql.Quote("p", "username"),
			psql.Quote("p", "birthday"),
			psql.Quote("p", "introduction"),
			psql.Quote("p", "gender_id"),
			psql.Quote("g", "gender_name"),
			psql.Quote("p", "sexual_orientation_id"),
			psql.Quote("so", "orientation_name"),
		),
		sm.From(profilesTable).As("p"),
		sm.LeftJoin(gendersTable).As("g").On(psql.Quote("g", "id").EQ(psql.Quote("p", "gender_id"))),
		sm.LeftJoin(orientationsTable).As("so").On(psql.Quote("so", "id").EQ(psql.Quote("p", "sexual_orientation_id"))),
		sm.OrderBy(psql.Quote("p", "id")),
	)
	for _, f := range filters {
		query.Apply(sm.Where(f))
	}

	rows, err := bob.All(ctx, exec, query, scan.StructMapper[ProfileRow]())
	if err != nil {
		slog.ErrorContext(ctx, "profile query error", slog.Any("error", err))
		return nil, wrapProfileError(err)
	}

	profiles := make([]domain.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, toProfile(row))
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	links, err := interestLinks(ctx, exec, filters...)
	if err != nil {
		return nil, err
	}

	imageQuery := psql.Select(
		sm.Columns(
			psql.Quote("pi", "id"),
			psql.Quote("pi", "profile_id"),
			psql.Quote("pi", "image_url"),
			psql.Quote("pi", "is_primary"),
		),
		sm.From(imagesTable).As("pi"),
		sm.InnerJoin(profilesTable).As("p").On(psql.Quote("p", "id").EQ(psql.Quote("pi", "profile_id"))),
		sm.OrderBy(psql.Quote("pi", "id")),
	)
	for _, f := range filters {
		imageQuery.Apply(sm.Where(f))
	}

	images, err := bob.All(ctx, exec, imageQuery, scan.StructMapper[ImageRow]())
	if err != nil {
		slog.ErrorContext(ctx, "profile image query error", slog.Any("error", err))
		return nil, wrapProfileError(err)
	}

	attach(profiles, links, images)
	return profiles, nil
}

// interestLinks joins the links to interest names. Links to unknown
// interest ids drop out of the inner join.
func interestLinks(ctx context.Context, exec bob.Executor, filters ...bob.Expression) ([]InterestLinkRow, error) {
	query := psql.Select(
		sm.Columns(psql.Quote("ui", "profile_id"), psql.Quote("i", "interest_name")),
		sm.From(linksTable).As("ui"),
		sm.InnerJoin(profilesTable).As("p").On(psql.Quote("p", "id").EQ(psql.Quote("ui", "profile_id"))),
		sm.InnerJoin(interestsTable).As("i").On(psql.Quote("i", "id").EQ(psql.Quote("ui", "interest_id"))),
		sm.OrderBy(psql.Quote("ui", "id")),
	)
	for _, f := range filters {
		query.Apply(sm.Where(f))
	}

	links, err := bob.All(ctx, exec, query, scan.StructMapper[InterestLinkRow]())
	if err != nil {
		slog.ErrorContext(ctx, "interest query error", slog.Any("error", err))
		return nil, wrapProfileError(err)
	}
	return links, nil
}

// profileExists returns ErrProfileNotFound when no row has the id. With
// lock set the row is locked for the rest of the transaction.
func profileExists(ctx context.Context, exec bob.Executor, id int64, lock bool) error {
	query := psql.Select(
		sm.Columns("id"),
		sm.From(profilesTable),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	if lock {
		query.Apply(sm.ForUpdate())
	}
	_, err := bob.One(ctx, exec, query, scan.SingleColumnMapper[int64])
	return wrapProfileError(err)
}
