package db

// TagFilter matches a TAG field against one exact value.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // index alias of the vector attribute; "vector" when empty
	Vector       []float32
	K            int
	Exclude      []TagFilter // pre-filter: drop entries matching any of these
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. For KNN queries Score is the raw distance
// reported by the index (cosine distance, lower is closer).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
