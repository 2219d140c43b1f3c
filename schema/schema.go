package schema

import "strings"

type (
	// DataType is the engine's logical column type, decoupled from any
	// file format's physical encoding.
	DataType string

	Field struct {
		Name string   `json:"name"`
		Type DataType `json:"type"`
	}

	// Schema is an ordered list of fields. Field names are stored
	// lower-cased so column lookups are case-insensitive.
	Schema struct {
		Fields []Field `json:"fields"`
	}
)

const (
	Boolean   DataType = "boolean"
	Int32     DataType = "int32"
	Int64     DataType = "int64"
	Float32   DataType = "float32"
	Float64   DataType = "float64"
	String    DataType = "string"
	Binary    DataType = "binary"
	Date      DataType = "date"
	Timestamp DataType = "timestamp"
)

func New(fields []Field) *Schema {
	for i := range fields {
		fields[i].Name = strings.ToLower(fields[i].Name)
	}
	return &Schema{Fields: fields}
}

func (s *Schema) Len() int {
	return len(s.Fields)
}

func (s *Schema) Field(i int) Field {
	return s.Fields[i]
}

// FieldIndex looks a field up by name, case-insensitively.
func (s *Schema) FieldIndex(name string) (int, bool) {
	name = strings.ToLower(name)
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}
