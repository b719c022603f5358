package metadata

// Attribute describes a scalar field of an entity.
type Attribute struct {
	// Name is the identifier used in field paths (e.g. "title")
	Name string
	// Column is the storage column; defaults to Name
	Column   string
	Kind     Kind
	Nullable bool
}

// KeyPair represents a single join column mapping
type KeyPair struct {
	// Local is the column of the owning (parent) table (e.g. "author_id")
	Local string
	// Remote is the column of the target table (e.g. "id")
	Remote string
}

// Relationship describes a traversable association to another entity.
type Relationship struct {
	// Name is the identifier used in field paths (e.g. "author")
	Name string

	// Target is the name of the related entity
	Target string

	// ToMany is true for collection-valued associations (one-to-many);
	// joining them may multiply root rows
	ToMany bool

	// Keys defines the join condition (supports composite keys)
	// For many-to-one: []KeyPair{{Local: "author_id", Remote: "id"}}
	// For one-to-many: []KeyPair{{Local: "id", Remote: "post_id"}}
	Keys []KeyPair
}

// Entity is the metadata table of one entity type.
type Entity struct {
	name          string
	table         string
	primaryKey    string
	attributes    []Attribute
	attributeIdx  map[string]int
	relationships map[string]Relationship
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) Table() string {
	return e.table
}

// PrimaryKey returns the attribute holding the entity identity.
func (e *Entity) PrimaryKey() Attribute {
	a, _ := e.Attribute(e.primaryKey)
	return a
}

// Attributes returns scalar attributes in declaration order.
func (e *Entity) Attributes() []Attribute {
	result := make([]Attribute, len(e.attributes))
	copy(result, e.attributes)
	return result
}

func (e *Entity) Attribute(name string) (Attribute, bool) {
	idx, ok := e.attributeIdx[name]
	if !ok {
		return Attribute{}, false
	}
	return e.attributes[idx], true
}

func (e *Entity) Relationship(name string) (Relationship, bool) {
	r, ok := e.relationships[name]
	return r, ok
}
