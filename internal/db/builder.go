package db

import "strings"

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition for the named index.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix restricts the index to keys with the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldNumeric})
}

// Tag adds a case-sensitive TAG field. Profile IDs are matched verbatim.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag, CaseSensitive: true})
}

// VectorHNSW adds a FLOAT32 HNSW vector field.
func (b *IndexBuilder) VectorHNSW(name string, dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	return b.add(IndexField{
		Name: name,
		Type: IndexFieldVector,
		Vector: &VectorParams{
			Dim:            dim,
			Distance:       distance,
			M:              m,
			EFConstruction: efConstruct,
		},
	})
}

// As aliases the last added field. Without fields it is a no-op.
func (b *IndexBuilder) As(alias string) *IndexBuilder {
	if n := len(b.def.Fields); n > 0 {
		b.def.Fields[n-1].Alias = alias
	}
	return b
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns a copy of the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Prefixes = append([]string(nil), b.def.Prefixes...)
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild is Build for definitions known to be valid.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String renders the definition like FT.CREATE, without vector attributes.
func (idx *IndexDefinition) String() string {
	var sb strings.Builder
	sb.WriteString("FT.CREATE " + idx.Name + " ON HASH")
	if len(idx.Prefixes) > 0 {
		sb.WriteString(" PREFIX " + strings.Join(idx.Prefixes, " "))
	}
	sb.WriteString(" SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		sb.WriteString(" " + f.Name)
		if f.Alias != "" {
			sb.WriteString(" AS " + f.Alias)
		}
		switch f.Type {
		case IndexFieldTag:
			sb.WriteString(" TAG")
		case IndexFieldNumeric:
			sb.WriteString(" NUMERIC")
		case IndexFieldVector:
			sb.WriteString(" VECTOR HNSW")
		}
	}
	return sb.String()
}
