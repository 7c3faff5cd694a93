package db

import (
	"errors"
	"fmt"
	"regexp"
)

// DistanceMetric is the DISTANCE_METRIC of a vector field.
type DistanceMetric string

// DistanceCosine makes KNN scores cosine distances in [0, 2].
const DistanceCosine DistanceMetric = "COSINE"

// IndexFieldType enumerates the schema field kinds the profile index uses.
type IndexFieldType int

const (
	// IndexFieldNumeric is a NUMERIC field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a TAG field.
	IndexFieldTag
	// IndexFieldVector is a FLOAT32 HNSW VECTOR field.
	IndexFieldVector
)

// VectorParams configures a VECTOR field. Zero M or EFConstruction leaves the server default.
type VectorParams struct {
	Dim            int
	Distance       DistanceMetric
	M              int
	EFConstruction int
}

// IndexField is one SCHEMA entry.
type IndexField struct {
	Name  string
	Alias string // AS alias, used by queries instead of Name
	Type  IndexFieldType

	CaseSensitive bool          // TAG only
	Vector        *VectorParams // VECTOR only
}

// key is the name queries refer to the field by.
func (f *IndexField) key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is an FT index over HASH keys.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_:-]+$`)

// IsValidIdentifier reports whether s is usable as an index name.
func IsValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Validate checks that the definition can be sent to FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return errors.New("index name is required")
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	case len(idx.Fields) == 0:
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field name is required at index %d", i)
		}
		if _, dup := seen[f.key()]; dup {
			return fmt.Errorf("duplicate field name: %s", f.key())
		}
		seen[f.key()] = struct{}{}

		if f.Type == IndexFieldVector && (f.Vector == nil || f.Vector.Dim <= 0) {
			return fmt.Errorf("vector field %s requires positive DIM", f.Name)
		}
	}
	return nil
}
