package profilematch

import (
	"time"

	"github.com/kailas-cloud/profilematch/internal/domain/match"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
	profileuc "github.com/kailas-cloud/profilematch/internal/usecase/profile"
)

// ProfileInput describes a profile to add. Age and Location are optional.
type ProfileInput struct {
	Name        string
	Description string
	Age         *int
	Location    *string
}

// Profile is a stored profile.
type Profile struct {
	ID          string
	Name        string
	Description string
	Age         *int
	Location    *string
	CreatedAt   time.Time
}

// Match is a profile with its similarity to the query, in [0,1].
type Match struct {
	Profile
	Score float64
}

// Stats describes the backing collection.
type Stats struct {
	TotalProfiles int
	Collection    string
	Location      string
}

func (in ProfileInput) toDomain() (domprofile.Input, error) {
	return domprofile.NewInput(in.Name, in.Description, in.Age, in.Location) //nolint:wrapcheck // domain validation error
}

func profileFromDomain(p *domprofile.Profile) Profile {
	return Profile{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Age:         p.Age(),
		Location:    p.Location(),
		CreatedAt:   p.CreatedAt(),
	}
}

func matchFromDomain(r *match.Result) Match {
	p := r.Profile()
	return Match{Profile: profileFromDomain(&p), Score: r.Score()}
}

func statsFromDomain(st profileuc.Stats) Stats {
	return Stats{
		TotalProfiles: st.TotalProfiles,
		Collection:    st.CollectionName,
		Location:      st.PersistLocation,
	}
}
