package metadata

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Registry holds the metadata tables of all searchable entities.
// It is immutable once built and may be shared between goroutines.
type Registry struct {
	entities map[string]*Entity
}

// Entity returns the metadata table of the named entity
func (r *Registry) Entity(name string) (*Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// EntityDefinition collects the declaration of one entity before validation.
type EntityDefinition struct {
	Name          string
	Table         string
	PrimaryKey    string
	Attributes    []Attribute
	Relationships []Relationship
}

// RegistryBuilder accumulates entity definitions
type RegistryBuilder struct {
	definitions []*EntityDefinition
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// Entity starts a new entity definition stored in table.
func (b *RegistryBuilder) Entity(name, table, primaryKey string) *EntityDefinition {
	def := &EntityDefinition{
		Name:       name,
		Table:      table,
		PrimaryKey: primaryKey,
	}
	b.definitions = append(b.definitions, def)
	return def
}

// Add registers a fully populated definition
func (b *RegistryBuilder) Add(def EntityDefinition) *RegistryBuilder {
	b.definitions = append(b.definitions, &def)
	return b
}

// Attribute adds a scalar attribute whose column equals its name.
func (d *EntityDefinition) Attribute(name string, kind Kind) *EntityDefinition {
	d.Attributes = append(d.Attributes, Attribute{Name: name, Column: name, Kind: kind})
	return d
}

// NullableAttribute adds a scalar attribute that may hold NULL.
func (d *EntityDefinition) NullableAttribute(name string, kind Kind) *EntityDefinition {
	d.Attributes = append(d.Attributes, Attribute{Name: name, Column: name, Kind: kind, Nullable: true})
	return d
}

// ManyToOne adds a single-valued relationship: local column references the target key.
func (d *EntityDefinition) ManyToOne(name, target, localColumn, remoteColumn string) *EntityDefinition {
	d.Relationships = append(d.Relationships, Relationship{
		Name:   name,
		Target: target,
		Keys:   []KeyPair{{Local: localColumn, Remote: remoteColumn}},
	})
	return d
}

// OneToMany adds a collection-valued relationship: remote column references the local key.
func (d *EntityDefinition) OneToMany(name, target, localColumn, remoteColumn string) *EntityDefinition {
	d.Relationships = append(d.Relationships, Relationship{
		Name:   name,
		Target: target,
		ToMany: true,
		Keys:   []KeyPair{{Local: localColumn, Remote: remoteColumn}},
	})
	return d
}

// Build validates every definition and returns the registry.
// All problems are reported together.
func (b *RegistryBuilder) Build() (*Registry, error) {
	var result *multierror.Error
	entities := make(map[string]*Entity, len(b.definitions))

	for _, def := range b.definitions {
		e, err := newEntity(def)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if _, found := entities[e.name]; found {
			result = multierror.Append(result, fmt.Errorf("entity %q is defined twice", e.name))
			continue
		}
		entities[e.name] = e
	}

	for _, e := range entities {
		for _, rel := range e.relationships {
			if _, found := entities[rel.Target]; !found {
				result = multierror.Append(result, fmt.Errorf(
					"entity %q: relationship %q targets unknown entity %q", e.name, rel.Name, rel.Target,
				))
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Registry{entities: entities}, nil
}

func newEntity(def *EntityDefinition) (*Entity, error) {
	var result *multierror.Error
	fail := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("entity %q: "+format, append([]any{def.Name}, args...)...))
	}

	if !identifierRe.MatchString(def.Name) {
		fail("invalid entity name")
	}
	if !identifierRe.MatchString(def.Table) {
		fail("invalid table name %q", def.Table)
	}

	e := &Entity{
		name:          def.Name,
		table:         def.Table,
		primaryKey:    def.PrimaryKey,
		attributeIdx:  make(map[string]int, len(def.Attributes)),
		relationships: make(map[string]Relationship, len(def.Relationships)),
	}

	for _, a := range def.Attributes {
		if a.Column == "" {
			a.Column = a.Name
		}
		if !identifierRe.MatchString(a.Name) || !identifierRe.MatchString(a.Column) {
			fail("invalid attribute %q", a.Name)
			continue
		}
		if _, err := ParseKind(string(a.Kind)); err != nil {
			fail("attribute %q: %v", a.Name, err)
			continue
		}
		if _, found := e.attributeIdx[a.Name]; found {
			fail("attribute %q is defined twice", a.Name)
			continue
		}
		e.attributeIdx[a.Name] = len(e.attributes)
		e.attributes = append(e.attributes, a)
	}

	for _, rel := range def.Relationships {
		if !identifierRe.MatchString(rel.Name) {
			fail("invalid relationship %q", rel.Name)
			continue
		}
		if _, found := e.attributeIdx[rel.Name]; found {
			fail("relationship %q shadows an attribute", rel.Name)
			continue
		}
		if _, found := e.relationships[rel.Name]; found {
			fail("relationship %q is defined twice", rel.Name)
			continue
		}
		if len(rel.Keys) == 0 {
			fail("relationship %q has no join keys", rel.Name)
			continue
		}
		valid := true
		for _, k := range rel.Keys {
			if !identifierRe.MatchString(k.Local) || !identifierRe.MatchString(k.Remote) {
				fail("relationship %q has an invalid join key", rel.Name)
				valid = false
				break
			}
		}
		if valid {
			e.relationships[rel.Name] = rel
		}
	}

	if _, found := e.attributeIdx[def.PrimaryKey]; !found {
		fail("primary key %q is not an attribute", def.PrimaryKey)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return e, nil
}
