package fieldmap

import (
	"fmt"
	"slices"
	"time"
)

// Column is one output field.
type Column struct {
	Name string
	Path Path
	Kind Kind
}

// FieldMap is an ordered, immutable list of output columns.
type FieldMap struct {
	columns []Column
}

// FlatRecord holds one rendered value per FieldMap column, in column order.
type FlatRecord []string

func New(columns ...Column) (FieldMap, error) {
	if len(columns) == 0 {
		return FieldMap{}, fmt.Errorf("field map has no columns")
	}

	seen := make(map[string]struct{}, len(columns))
	out := make([]Column, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return FieldMap{}, fmt.Errorf("column %d has no name", i)
		}
		if _, ok := seen[c.Name]; ok {
			return FieldMap{}, fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = struct{}{}

		if c.Kind == "" {
			c.Kind = KindText
		}
		if !c.Kind.Valid() {
			return FieldMap{}, fmt.Errorf("column %q has unknown kind %q", c.Name, c.Kind)
		}
		if slices.Contains(c.Path.Keys(), "") {
			return FieldMap{}, fmt.Errorf("column %q has an incomplete path %q", c.Name, c.Path)
		}
		out[i] = c
	}
	return FieldMap{columns: out}, nil
}

// Default is the plugin field map: id, name, downloads, rating, pricing, vendor,
// tags and date.
func Default() FieldMap {
	fm, err := New(
		Column{Name: "id", Path: Flat("id"), Kind: KindText},
		Column{Name: "name", Path: Flat("name"), Kind: KindText},
		Column{Name: "downloads", Path: Flat("downloads"), Kind: KindText},
		Column{Name: "rating", Path: Flat("rating"), Kind: KindText},
		Column{Name: "pricing", Path: Flat("pricingModel"), Kind: KindText},
		Column{Name: "vendor", Path: Nested("vendor", "name"), Kind: KindText},
		Column{Name: "tags", Path: Flat("tags"), Kind: KindList},
		Column{Name: "date", Path: Flat("cdate"), Kind: KindEpochMillisDate},
	)
	if err != nil {
		panic(err)
	}
	return fm
}

// ColumnConfig is the configuration file form of a Column. Path holds one key for a
// top level value or two keys for a value nested in an object.
type ColumnConfig struct {
	Name string   `json:"name"`
	Path []string `json:"path"`
	Kind Kind     `json:"kind"`
}

func FromConfig(columns []ColumnConfig) (FieldMap, error) {
	out := make([]Column, len(columns))
	for i, c := range columns {
		path, err := PathFromKeys(c.Path)
		if err != nil {
			return FieldMap{}, fmt.Errorf("column %q: %w", c.Name, err)
		}
		out[i] = Column{Name: c.Name, Path: path, Kind: c.Kind}
	}
	return New(out...)
}

// Config returns the configuration file form of the field map.
func (f FieldMap) Config() []ColumnConfig {
	out := make([]ColumnConfig, len(f.columns))
	for i, c := range f.columns {
		out[i] = ColumnConfig{Name: c.Name, Path: c.Path.Keys(), Kind: c.Kind}
	}
	return out
}

func (f FieldMap) Len() int {
	return len(f.columns)
}

func (f FieldMap) Columns() []Column {
	out := make([]Column, len(f.columns))
	copy(out, f.columns)
	return out
}

func (f FieldMap) Names() []string {
	out := make([]string, len(f.columns))
	for i, c := range f.columns {
		out[i] = c.Name
	}
	return out
}

// Project renders a raw record into a FlatRecord, every column is always present.
func (f FieldMap) Project(record map[string]any, loc *time.Location) FlatRecord {
	out := make(FlatRecord, len(f.columns))
	for i, c := range f.columns {
		out[i] = Normalize(c.Kind, Resolve(record, c.Path), loc)
	}
	return out
}

// AsMap pairs a FlatRecord with the column names.
func (f FieldMap) AsMap(row FlatRecord) map[string]string {
	out := make(map[string]string, len(f.columns))
	for i, c := range f.columns {
		if i < len(row) {
			out[c.Name] = row[i]
		}
	}
	return out
}
