package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/profilematch/internal/db"
)

const defaultVectorField = "vector"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Entry scores are the raw distances reported by the index, nearest first.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	field := q.VectorField
	if field == "" {
		field = defaultVectorField
	}
	// FT.SEARCH names the distance attribute __<field>_score.
	scoreField := "__" + field + "_score"

	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB]", q.K, field)
	queryStr := "*=>" + knnPart
	if pre := buildExclusion(q.Exclude); pre != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", pre, knnPart)
	}

	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		ret := append(append([]string{}, q.ReturnFields...), scoreField)
		args = append(args, "RETURN", strconv.Itoa(len(ret)))
		args = append(args, ret...)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := parseEntries(raw, scoreField)
	if err != nil {
		return nil, err
	}
	// valkey-search has no SORTBY; order by distance here for both servers.
	sort.SliceStable(res.Entries, func(i, j int) bool {
		return res.Entries[i].Score < res.Entries[j].Score
	})
	return res, nil
}

// SearchList performs paginated search via FT.SEARCH. On Valkey a match-all
// query is served by scanList.
func (s *Store) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if s.valkey && query == matchAll {
		return s.scanList(ctx, index, offset, limit, fields)
	}

	args := []string{index, query, "LIMIT", strconv.Itoa(offset), strconv.Itoa(limit)}

	if len(fields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseEntries(raw, "")
}

// SearchCount returns document count via FT.SEARCH with LIMIT 0 0, or the
// number of scanned keys for a match-all query on Valkey.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	if s.valkey && query == matchAll {
		keys, err := s.scanIndexKeys(ctx, index)
		if err != nil {
			return 0, fmt.Errorf("scan for count: %w", err)
		}
		return len(keys), nil
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

const matchAll = "*"

// scanList pages over the sorted key set and reads each hash. Keys deleted
// between SCAN and HGETALL are skipped but still counted in Total.
func (s *Store) scanList(
	ctx context.Context, index string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	keys, err := s.scanIndexKeys(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}

	total := len(keys)
	if offset >= total || limit <= 0 {
		return &db.SearchResult{Total: total}, nil
	}
	page := keys[offset:min(offset+limit, total)]

	entries := make([]db.SearchEntry, 0, len(page))
	for _, key := range page {
		m, err := s.HGetAll(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(m) == 0 {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key, Fields: pickFields(m, fields)})
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// scanIndexKeys returns the distinct keys under the index prefix, sorted.
func (s *Store) scanIndexKeys(ctx context.Context, index string) ([]string, error) {
	keys, err := s.Scan(ctx, indexKeyPrefix(index)+"*")
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return slices.Compact(keys), nil
}

// indexKeyPrefix maps "profilematch:people:idx" to "profilematch:people:".
func indexKeyPrefix(index string) string {
	if base, ok := strings.CutSuffix(index, ":idx"); ok {
		return base + ":"
	}
	return index + ":"
}

// pickFields keeps only the requested fields; nil means all of them.
func pickFields(m map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return m
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}

// --- Result parsing ---

// parseEntries reads the 2-stride reply [total, key1, fields1, key2, fields2, ...].
// When scoreField is set it is moved from Fields into Score.
func parseEntries(raw []rueidis.RedisMessage, scoreField string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		if scoreField != "" {
			if v, ok := entry.Fields[scoreField]; ok {
				if d, err := strconv.ParseFloat(v, 64); err == nil {
					entry.Score = d
				}
				delete(entry.Fields, scoreField)
			}
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

// buildExclusion renders a negated tag pre-filter: -@f:{v} -@g:{w}.
func buildExclusion(filters []db.TagFilter) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, "-"+buildTagFilter(f.Field, f.Value))
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
