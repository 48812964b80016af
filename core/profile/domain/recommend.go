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
	"slices"
)

type RecommendationCategory string

const (
	MaleHetero   RecommendationCategory = "male-hetero"
	MaleHomo     RecommendationCategory = "male-homo"
	MaleBi       RecommendationCategory = "male-bi"
	FemaleHetero RecommendationCategory = "female-hetero"
	FemaleHomo   RecommendationCategory = "female-homo"
	FemaleBi     RecommendationCategory = "female-bi"
)

// Orientation ids as seeded in sexual_orientations.
const (
	HeterosexualMale = iota
	HomosexualMale
	BisexualMale
	HeterosexualFemale
	HomosexualFemale
	BisexualFemale
)

// compatibility is a fixed table, not a matching algorithm.
var compatibility = map[RecommendationCategory][]int{
	MaleHetero:   {HeterosexualFemale, BisexualFemale},
	MaleHomo:     {HomosexualMale, BisexualMale},
	MaleBi:       {HomosexualMale, BisexualMale, HeterosexualFemale, BisexualFemale},
	FemaleHetero: {HeterosexualMale, BisexualMale},
	FemaleHomo:   {HomosexualFemale, BisexualFemale},
	FemaleBi:     {HeterosexualMale, HomosexualMale, BisexualMale, HomosexualFemale},
}

// RecommendationCategories lists the categories in a stable order.
func RecommendationCategories() []RecommendationCategory {
	return []RecommendationCategory{MaleHetero, MaleHomo, MaleBi, FemaleHetero, FemaleHomo, FemaleBi}
}

// CompatibleOrientations returns the orientation ids listed for category.
func CompatibleOrientations(category RecommendationCategory) ([]int, bool) {
	ids, ok := compatibility[category]
	return slices.Clone(ids), ok
}

// Recommend lists the profiles whose orientation is compatible with the
// category.
func (app *Application) Recommend(ctx context.Context, category RecommendationCategory) ([]Profile, error) {
	ids, ok := CompatibleOrientations(category)
	if !ok {
		return nil, ErrUnknownCategory
	}
	profiles, err := app.reader.ListProfiles(ctx, ids...)
	if err != nil {
		return nil, settle(ctx, err)
	}
	for i := range profiles {
		app.withAge(&profiles[i])
	}
	return profiles, nil
}

// RecommendIDs is Recommend without hydrating the profiles.
func (app *Application) RecommendIDs(ctx context.Context, category RecommendationCategory) ([]int64, error) {
	ids, ok := CompatibleOrientations(category)
	if !ok {
		return nil, ErrUnknownCategory
	}
	out, err := app.reader.ListProfileIDsByOrientation(ctx, ids)
	if err != nil {
		return nil, settle(ctx, err)
	}
	return out, nil
}
