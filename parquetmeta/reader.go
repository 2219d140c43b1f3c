package parquetmeta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/floedb/floe/operator"
	"github.com/floedb/floe/schema"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
)

var (
	ErrNoRowGroups = errors.New("no row groups found")
)

// FileMeta is the decoded binary footer of one parquet file: row-group
// layout and per-column chunk descriptors. It is never cached beyond the
// planning call that read it, re-reading tolerates files changing between
// plans.
type FileMeta struct {
	Location string
	Meta     *parquet.FileMetaData
}

// ReadMetadata opens the file at location and decodes its footer. It does
// not read any column data.
func ReadMetadata(ctx context.Context, op operator.Operator, location string) (*FileMeta, error) {
	f, err := op.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", location, err)
	}
	defer f.Close()

	pr, err := reader.NewParquetColumnReader(f, 1)
	if err != nil {
		return nil, fmt.Errorf("read parquet file '%s's meta error: %w", location, err)
	}

	return &FileMeta{
		Location: location,
		Meta:     pr.Footer,
	}, nil
}

// InferSchema derives the engine schema from the first row group's column
// descriptors, lower-casing every field name so downstream column matching
// is case-insensitive.
func InferSchema(ctx context.Context, op operator.Operator, location string) (*schema.Schema, error) {
	fm, err := ReadMetadata(ctx, op, location)
	if err != nil {
		return nil, err
	}
	if len(fm.Meta.RowGroups) == 0 {
		return nil, fmt.Errorf("%w in parquet file '%s'", ErrNoRowGroups, location)
	}

	cols := fm.Meta.RowGroups[0].Columns
	fields := make([]schema.Field, 0, len(cols))
	for _, col := range cols {
		md := col.MetaData
		name := md.PathInSchema[len(md.PathInSchema)-1]
		fields = append(fields, schema.Field{
			Name: strings.ToLower(name),
			Type: logicalType(fm.Meta.Schema, name, md.Type),
		})
	}
	return schema.New(fields), nil
}

// logicalType maps a column's parquet physical type (refined by the schema
// element's converted type when present) into the engine type.
func logicalType(elements []*parquet.SchemaElement, name string, physical parquet.Type) schema.DataType {
	var converted *parquet.ConvertedType
	for _, se := range elements {
		if se.Name == name {
			converted = se.ConvertedType
			break
		}
	}

	switch physical {
	case parquet.Type_BOOLEAN:
		return schema.Boolean
	case parquet.Type_INT32:
		if converted != nil && *converted == parquet.ConvertedType_DATE {
			return schema.Date
		}
		return schema.Int32
	case parquet.Type_INT64:
		if converted != nil && (*converted == parquet.ConvertedType_TIMESTAMP_MILLIS || *converted == parquet.ConvertedType_TIMESTAMP_MICROS) {
			return schema.Timestamp
		}
		return schema.Int64
	case parquet.Type_INT96:
		return schema.Timestamp
	case parquet.Type_FLOAT:
		return schema.Float32
	case parquet.Type_DOUBLE:
		return schema.Float64
	case parquet.Type_BYTE_ARRAY, parquet.Type_FIXED_LEN_BYTE_ARRAY:
		if converted != nil && *converted == parquet.ConvertedType_UTF8 {
			return schema.String
		}
		return schema.Binary
	default:
		return schema.Binary
	}
}
