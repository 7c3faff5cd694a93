package redis

import (
	"context"

	"github.com/kailas-cloud/profilematch/internal/db"
)

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 100

// HSet writes fields into the hash at key, creating it when missing.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	fv := s.b().Hset().Key(key).FieldValue()
	for name, value := range fields {
		fv = fv.FieldValue(name, value)
	}
	if err := s.do(ctx, fv.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll reads the whole hash. Redis answers a missing key with an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return fields, nil
}

// Del removes key. The bool is false when there was nothing to remove.
func (s *Store) Del(ctx context.Context, key string) (bool, error) {
	removed, err := s.do(ctx, s.b().Del().Key(key).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpDel, Err: err}
	}
	return removed > 0, nil
}

// Scan walks the keyspace with SCAN MATCH until the cursor wraps to 0.
// SCAN may repeat a key across batches; callers dedupe.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		page, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, page.Elements...)
		if cursor = page.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
