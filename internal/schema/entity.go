// Package schema maps API keys (camelCase json names) onto table columns for
// every model, using gorm's own schema parser so the mapping never drifts from
// the tables.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	gormschema "gorm.io/gorm/schema"
)

// alwaysReadOnly are maintained by the database or gorm itself.
var alwaysReadOnly = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
}

type Field struct {
	Key    string
	Column string
	Name   string
}

type Entity struct {
	Name      string
	Table     string
	fields    []Field
	byKey     map[string]Field
	byColumn  map[string]Field
	relations map[string]bool
}

var (
	parsed   = &sync.Map{}
	entities sync.Map
)

// For returns the mapping for model, parsing it on first use.
func For(model interface{}) (*Entity, error) {
	s, err := gormschema.Parse(model, parsed, gormschema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if e, ok := entities.Load(s.Table); ok {
		return e.(*Entity), nil
	}

	e := &Entity{
		Name:      s.Name,
		Table:     s.Table,
		byKey:     map[string]Field{},
		byColumn:  map[string]Field{},
		relations: map[string]bool{},
	}
	for _, f := range s.Fields {
		key := jsonKey(f)
		if key == "-" {
			continue
		}
		if f.DBName == "" {
			if _, ok := s.Relationships.Relations[f.Name]; ok {
				e.relations[key] = true
			}
			continue
		}
		field := Field{Key: key, Column: f.DBName, Name: f.Name}
		e.fields = append(e.fields, field)
		e.byKey[key] = field
		e.byColumn[f.DBName] = field
	}

	actual, _ := entities.LoadOrStore(s.Table, e)
	return actual.(*Entity), nil
}

// MustFor is For for models known at compile time.
func MustFor(model interface{}) *Entity {
	e, err := For(model)
	if err != nil {
		panic(err)
	}
	return e
}

func jsonKey(f *gormschema.Field) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

func (e *Entity) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Column resolves an API key to its column name.
func (e *Entity) Column(key string) (string, bool) {
	f, ok := e.byKey[key]
	return f.Column, ok
}

// Key resolves a column name to its API key.
func (e *Entity) Key(column string) (string, bool) {
	f, ok := e.byColumn[column]
	return f.Key, ok
}

// IsRelation reports whether key names a nested association rather than a column.
func (e *Entity) IsRelation(key string) bool {
	return e.relations[key]
}

// Patch turns the keys of a partial update body into the columns to write.
// Unknown keys, associations and keys listed in protected (or maintained by
// the database) are rejected together in one *FieldError.
func (e *Entity) Patch(keys []string, protected ...string) ([]string, error) {
	deny := make(map[string]bool, len(protected))
	for _, p := range protected {
		deny[p] = true
	}

	var columns []string
	ferr := &FieldError{Entity: e.Name}
	for _, key := range keys {
		f, ok := e.byKey[key]
		switch {
		case !ok && e.relations[key], alwaysReadOnly[key], deny[key]:
			ferr.ReadOnly = append(ferr.ReadOnly, key)
		case !ok:
			ferr.Unknown = append(ferr.Unknown, key)
		default:
			columns = append(columns, f.Column)
		}
	}
	if len(ferr.Unknown) > 0 || len(ferr.ReadOnly) > 0 {
		sort.Strings(ferr.Unknown)
		sort.Strings(ferr.ReadOnly)
		return nil, ferr
	}
	sort.Strings(columns)
	return columns, nil
}

// Normalize rewrites snake_case column keys in a raw record to their API keys
// and drops keys the entity does not know. Association keys are kept. It
// returns the dropped keys.
func Normalize[V any](e *Entity, record map[string]V) []string {
	var dropped []string
	for k, v := range record {
		if _, ok := e.byKey[k]; ok || e.relations[k] {
			continue
		}
		delete(record, k)
		if f, ok := e.byColumn[k]; ok {
			if _, clash := record[f.Key]; !clash {
				record[f.Key] = v
			}
			continue
		}
		dropped = append(dropped, k)
	}
	sort.Strings(dropped)
	return dropped
}

type FieldError struct {
	Entity   string
	Unknown  []string
	ReadOnly []string
}

func (e *FieldError) Error() string {
	var parts []string
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown fields: "+strings.Join(e.Unknown, ", "))
	}
	if len(e.ReadOnly) > 0 {
		parts = append(parts, "read-only fields: "+strings.Join(e.ReadOnly, ", "))
	}
	return fmt.Sprintf("%s: %s", strings.ToLower(e.Entity), strings.Join(parts, "; "))
}
