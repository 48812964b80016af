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
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	"profilesvc/core/profile/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
)

const (
	profilesTable     = "profiles"
	interestsTable    = "interests"
	linksTable        = "user_interests"
	imagesTable       = "profile_images"
	gendersTable      = "genders"
	orientationsTable = "sexual_orientations"
)

type (
	// ProfileRow is the joined shape of a profile with its reference names.
	ProfileRow struct {
		ID                  int64          `db:"id"`
		Username            string         `db:"username"`
		Birthday            time.Time      `db:"birthday"`
		Introduction        string         `db:"introduction"`
		GenderID            sql.NullInt32  `db:"gender_id"`
		GenderName          sql.NullString `db:"gender_name"`
		SexualOrientationID int32          `db:"sexual_orientation_id"`
		OrientationName     sql.NullString `db:"orientation_name"`
	}

	ImageRow struct {
		ID        int64  `db:"id"`
		ProfileID int64  `db:"profile_id"`
		URL       string `db:"image_url"`
		IsPrimary bool   `db:"is_primary"`
	}

	InterestLinkRow struct {
		ProfileID int64  `db:"profile_id"`
		Name      string `db:"interest_name"`
	}

	ReferenceRow struct {
		ID   int32  `db:"id"`
		Name string `db:"name"`
	}
)

func toProfile(row ProfileRow) domain.Profile {
	p := domain.Profile{
		ID:                    row.ID,
		Username:              row.Username,
		Birthday:              row.Birthday,
		Introduction:          row.Introduction,
		GenderName:            row.GenderName.String,
		SexualOrientationID:   int(row.SexualOrientationID),
		SexualOrientationName: row.OrientationName.String,
		Interests:             []string{},
		Images:                []domain.Image{},
	}
	if row.GenderID.Valid {
		g := int(row.GenderID.Int32)
		p.GenderID = &g
	}
	return p
}

func toImage(row ImageRow) domain.Image {
	return domain.Image(row)
}

// attach distributes interest names and images over the profiles they
// belong to. Interest names are kept as a set.
func attach(profiles []domain.Profile, links []InterestLinkRow, images []ImageRow) {
	index := make(map[int64]int, len(profiles))
	for i := range profiles {
		index[profiles[i].ID] = i
	}
	for _, l := range links {
		i, ok := index[l.ProfileID]
		if !ok || slices.Contains(profiles[i].Interests, l.Name) {
			continue
		}
		profiles[i].Interests = append(profiles[i].Interests, l.Name)
	}
	for _, img := range images {
		if i, ok := index[img.ProfileID]; ok {
			profiles[i].Images = append(profiles[i].Images, toImage(img))
		}
	}
}

// wrapProfileError centralizes mapping of DB errors to domain errors.
func wrapProfileError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return domain.ErrDuplicateProfile
		case "23503": // foreign_key_violation
			return &domain.ValidationError{
				Field:  constraintColumn(pgErr.ConstraintName),
				Reason: "unknown reference",
			}
		}
	}

	return err
}

// constraintColumn extracts the column from a postgres generated foreign
// key name such as profiles_gender_id_fkey.
func constraintColumn(name string) string {
	name = strings.TrimSuffix(name, "_fkey")
	return strings.TrimPrefix(name, profilesTable+"_")
}

func int64Args(ids []int64) bob.Expression {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return psql.Arg(args...)
}

func intArgs(ids []int) bob.Expression {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return psql.Arg(args...)
}
