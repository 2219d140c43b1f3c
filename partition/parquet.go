package partition

import (
	"bytes"
	"fmt"
	"hash/fnv"
)

// ParquetKind is the wire type tag for parquet file partitions.
const ParquetKind = "parquet"

func init() {
	registerKind(ParquetKind, func() Partition { return &ParquetPartition{} })
}

type (
	// ColumnMeta locates one column chunk within a parquet file.
	ColumnMeta struct {
		Offset      int64  `json:"offset"`
		Length      int64  `json:"length"`
		NumValues   int64  `json:"num_values"`
		Compression string `json:"compression"`
		MinValue    []byte `json:"min_value,omitempty"`
		MaxValue    []byte `json:"max_value,omitempty"`
	}

	// ParquetPartition describes one parquet file as a unit of scan work.
	ParquetPartition struct {
		Location string `json:"location"`
		// FormatVersion is the physical encoding generation of the file at
		// Location, not a version of this struct. Consumers must branch
		// decode logic on it rather than assume the latest encoding.
		FormatVersion uint64 `json:"format_version"`
		NumRows       uint64 `json:"nums_rows"`
		// ColumnsMeta maps zero-based column index to its chunk descriptor,
		// one entry per projected-capable column.
		ColumnsMeta map[int]ColumnMeta `json:"columns_meta"`
	}
)

func NewParquet(location string, formatVersion, numRows uint64, columnsMeta map[int]ColumnMeta) Partition {
	return &ParquetPartition{
		Location:      location,
		FormatVersion: formatVersion,
		NumRows:       numRows,
		ColumnsMeta:   columnsMeta,
	}
}

func (p *ParquetPartition) Kind() string {
	return ParquetKind
}

func (p *ParquetPartition) Equals(other Partition) bool {
	o, ok := other.(*ParquetPartition)
	if !ok {
		return false
	}
	if p.Location != o.Location || p.FormatVersion != o.FormatVersion || p.NumRows != o.NumRows {
		return false
	}
	if len(p.ColumnsMeta) != len(o.ColumnsMeta) {
		return false
	}
	for idx, cm := range p.ColumnsMeta {
		ocm, exists := o.ColumnsMeta[idx]
		if !exists || !cm.equal(ocm) {
			return false
		}
	}
	return true
}

// Hash digests the location only: two partitions at the same location are
// the same unit of work for deduplication even if their metadata differs.
func (p *ParquetPartition) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(p.Location))
	return h.Sum64()
}

func (cm ColumnMeta) equal(o ColumnMeta) bool {
	return cm.Offset == o.Offset &&
		cm.Length == o.Length &&
		cm.NumValues == o.NumValues &&
		cm.Compression == o.Compression &&
		bytes.Equal(cm.MinValue, o.MinValue) &&
		bytes.Equal(cm.MaxValue, o.MaxValue)
}

// AsParquet narrows a generic partition to the parquet variant. Callers that
// assume a parquet source must go through this and propagate the error on
// mismatch, it is always an internal-logic error.
func AsParquet(p Partition) (*ParquetPartition, error) {
	pp, ok := p.(*ParquetPartition)
	if !ok {
		return nil, fmt.Errorf("cannot use %q partition as %q: %w", p.Kind(), ParquetKind, ErrWrongPartitionKind)
	}
	return pp, nil
}
