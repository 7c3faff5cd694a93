package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/profilematch/internal/db"
)

// CreateIndex issues FT.CREATE for def. An existing index yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}
	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isUnknownIndex(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// Redis answers "Unknown index name", valkey-search answers "Index ... not found".
func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "not found")
}

// buildCreateArgs renders everything after FT.CREATE.
func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("index definition: %w", err)
	}

	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}
	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}
	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		return append(args, "NUMERIC"), nil
	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.CaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
		return args, nil
	case db.IndexFieldVector:
		if f.Vector == nil || f.Vector.Dim <= 0 {
			return nil, fmt.Errorf("vector field %s: DIM must be positive", f.Name)
		}
		return append(args, hnswArgs(f.Vector)...), nil
	default:
		return nil, fmt.Errorf("field %s: unknown type %d", f.Name, f.Type)
	}
}

// hnswArgs renders "VECTOR HNSW <nargs> TYPE FLOAT32 DIM ...".
func hnswArgs(v *db.VectorParams) []string {
	distance := v.Distance
	if distance == "" {
		distance = db.DistanceCosine
	}
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	if v.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(v.M))
	}
	if v.EFConstruction > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruction))
	}
	return append([]string{"VECTOR", "HNSW", strconv.Itoa(len(attrs))}, attrs...)
}
