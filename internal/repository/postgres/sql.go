package postgres

import (
	"fmt"
	"strconv"
	"strings"
)

const profileColumns = "id, name, description, age, location, created_at"

type queries struct {
	schema []string
	insert string
	get    string
	knn    string
	list   string
	delete string
	count  string
}

func newQueries(table string, dim int) queries {
	t := quoteIdent(table)
	idx := quoteIdent(table + "_embedding_idx")

	return queries{
		schema: []string{
			`CREATE EXTENSION IF NOT EXISTS vector`,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	age         INTEGER,
	location    TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	embedding   vector(%d) NOT NULL
)`, t, dim),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)`, idx, t),
		},
		insert: fmt.Sprintf(`INSERT INTO %s (%s, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7::vector)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		age = EXCLUDED.age,
		location = EXCLUDED.location,
		created_at = EXCLUDED.created_at,
		embedding = EXCLUDED.embedding`, t, profileColumns),
		get: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, profileColumns, t),
		// <=> is pgvector cosine distance.
		knn: fmt.Sprintf(`SELECT %s, embedding <=> $1::vector AS distance
	FROM %s
	WHERE $2 = '' OR id <> $2
	ORDER BY distance
	LIMIT $3`, profileColumns, t),
		list:   fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id LIMIT $1`, profileColumns, t),
		delete: fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t),
		count:  fmt.Sprintf(`SELECT count(*) FROM %s`, t),
	}
}

// vectorLiteral renders v in pgvector text form: [1,2.5,-3].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*8 + 2)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
