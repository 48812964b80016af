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

import "time"

// AgeOn returns the age in whole years of someone born on birthday, as of
// the calendar date of now. Only the date parts are compared.
func AgeOn(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return age
}

func validateBirthday(birthday, now time.Time) error {
	if birthday.IsZero() || birthday.After(now) {
		return invalid("birthday", "Invalid birth date")
	}
	age := AgeOn(birthday, now)
	if age < MinAge {
		return invalid("birthday", "Must be at least 18 years old")
	}
	if age > MaxAge {
		return invalid("birthday", "Invalid birth date")
	}
	return nil
}

func (app *Application) withAge(p *Profile) *Profile {
	p.Age = AgeOn(p.Birthday, app.now())
	return p
}
