package profile

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

// Hash field names.
const (
	fieldID          = "profile_id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldAge         = "age"
	fieldLocation    = "location"
	fieldCreatedAt   = "created_at"
	fieldVector      = "__vector"
	vectorAlias      = "vector"
)

// returnFields excludes the vector blob from search replies.
var returnFields = []string{fieldID, fieldName, fieldDescription, fieldAge, fieldLocation, fieldCreatedAt}

// buildHashFields converts a profile and its vector into a flat map for HSET.
// Absent optional fields are omitted rather than stored empty.
func buildHashFields(p *domprofile.Profile, vec []float32) map[string]string {
	m := map[string]string{
		fieldID:          p.ID(),
		fieldName:        p.Name(),
		fieldDescription: p.Description(),
		fieldCreatedAt:   p.CreatedAt().UTC().Format(time.RFC3339Nano),
		fieldVector:      vectorToBytes(vec),
	}
	if age := p.Age(); age != nil {
		m[fieldAge] = strconv.Itoa(*age)
	}
	if loc := p.Location(); loc != nil {
		m[fieldLocation] = *loc
	}
	return m
}

// parseHashFields converts a flat hash map back into a profile.
// fallbackID is used when the hash predates the profile_id field.
func parseHashFields(fallbackID string, m map[string]string) domprofile.Profile {
	id := m[fieldID]
	if id == "" {
		id = fallbackID
	}

	var age *int
	if v, ok := m[fieldAge]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			age = &n
		}
	}

	var location *string
	if v, ok := m[fieldLocation]; ok {
		location = &v
	}

	var createdAt time.Time
	if v, ok := m[fieldCreatedAt]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			createdAt = ts.UTC()
		}
	}

	return domprofile.Reconstruct(id, m[fieldName], m[fieldDescription], age, location, createdAt)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
