// Package profile is the person profile aggregate.
package profile

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// Field limits, counted in characters.
const (
	MaxNameLen        = 100
	MinDescriptionLen = 10
	MaxDescriptionLen = 2000
	MaxLocationLen    = 100
	MinAge            = 18
	MaxAge            = 100
)

// Input is a validated request to create a profile.
type Input struct {
	name        string
	description string
	age         *int
	location    *string
}

// NewInput validates fields and builds an Input.
// Name: 1-100 chars. Description: 10-2000 chars. Age: 18-100 if set. Location: max 100 chars if set.
func NewInput(name, description string, age *int, location *string) (Input, error) {
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameLen {
		return Input{}, fmt.Errorf("%w: name must be 1-%d characters", domain.ErrValidation, MaxNameLen)
	}
	if n := utf8.RuneCountInString(description); n < MinDescriptionLen || n > MaxDescriptionLen {
		return Input{}, fmt.Errorf("%w: description must be %d-%d characters",
			domain.ErrValidation, MinDescriptionLen, MaxDescriptionLen)
	}
	if age != nil && (*age < MinAge || *age > MaxAge) {
		return Input{}, fmt.Errorf("%w: age must be between %d and %d", domain.ErrValidation, MinAge, MaxAge)
	}
	if location != nil && utf8.RuneCountInString(*location) > MaxLocationLen {
		return Input{}, fmt.Errorf("%w: location must be at most %d characters", domain.ErrValidation, MaxLocationLen)
	}

	return Input{
		name:        name,
		description: description,
		age:         cloneInt(age),
		location:    cloneString(location),
	}, nil
}

// Name returns the display name.
func (in Input) Name() string { return in.name }

// Description returns the text to embed.
func (in Input) Description() string { return in.description }

// Materialize assigns identity and creation time.
func (in Input) Materialize(id string, now time.Time) Profile {
	return Profile{
		id:          id,
		name:        in.name,
		description: in.description,
		age:         in.age,
		location:    in.location,
		createdAt:   now.UTC(),
	}
}

// Profile is a stored person profile (immutable value object).
type Profile struct {
	id          string
	name        string
	description string
	age         *int
	location    *string
	createdAt   time.Time
}

// Reconstruct creates a Profile without validation (storage hydration).
func Reconstruct(id, name, description string, age *int, location *string, createdAt time.Time) Profile {
	return Profile{
		id: id, name: name, description: description,
		age: age, location: location, createdAt: createdAt,
	}
}

// ID returns the profile identifier.
func (p *Profile) ID() string { return p.id }

// Name returns the display name.
func (p *Profile) Name() string { return p.name }

// Description returns the personality description.
func (p *Profile) Description() string { return p.description }

// Age returns the optional age.
func (p *Profile) Age() *int { return p.age }

// Location returns the optional location.
func (p *Profile) Location() *string { return p.location }

// CreatedAt returns the creation timestamp in UTC.
func (p *Profile) CreatedAt() time.Time { return p.createdAt }

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
