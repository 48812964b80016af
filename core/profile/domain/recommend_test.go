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

package domain_test

import (
	"context"
	"testing"

	"profilesvc/core/profile/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// profile id 100+n has orientation n
	for o := domain.HeterosexualMale; o <= domain.BisexualFemale; o++ {
		p := validProfile(int64(100 + o))
		p.SexualOrientationID = o
		f.create(t, p)
	}

	tests := map[domain.RecommendationCategory][]int64{
		domain.MaleHetero:   {103, 105},
		domain.MaleHomo:     {101, 102},
		domain.MaleBi:       {101, 102, 103, 105},
		domain.FemaleHetero: {100, 102},
		domain.FemaleHomo:   {104, 105},
		domain.FemaleBi:     {100, 101, 102, 104},
	}
	require.Len(t, domain.RecommendationCategories(), len(tests))

	for category, want := range tests {
		t.Run(string(category), func(t *testing.T) {
			ids, err := f.app.RecommendIDs(ctx, category)
			require.NoError(t, err)
			assert.Equal(t, want, ids)

			profiles, err := f.app.Recommend(ctx, category)
			require.NoError(t, err)
			got := make([]int64, 0, len(profiles))
			for _, p := range profiles {
				got = append(got, p.ID)
				assert.Equal(t, 29, p.Age)
			}
			assert.Equal(t, want, got)
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		_, err := f.app.Recommend(ctx, "robots")
		require.ErrorIs(t, err, domain.ErrUnknownCategory)
		_, err = f.app.RecommendIDs(ctx, "robots")
		require.ErrorIs(t, err, domain.ErrUnknownCategory)
	})
}

func TestCompatibleOrientationsIsACopy(t *testing.T) {
	ids, ok := domain.CompatibleOrientations(domain.MaleHetero)
	require.True(t, ok)
	ids[0] = 99

	again, _ := domain.CompatibleOrientations(domain.MaleHetero)
	assert.Equal(t, []int{domain.HeterosexualFemale, domain.BisexualFemale}, again)
}
