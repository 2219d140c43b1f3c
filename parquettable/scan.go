package parquettable

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/floedb/floe/operator"
	"github.com/floedb/floe/parquetmeta"
	"github.com/floedb/floe/partition"
	"github.com/floedb/floe/plan"
)

var (
	ErrColumnMismatch = errors.New("mismatched column metadata")
)

type (
	// ScanStage reads one parquet partition when the scheduler drives it.
	// It holds only values, opening the file and locating chunks happens
	// in Open.
	ScanStage struct {
		id       string
		op       operator.Operator
		part     *partition.ParquetPartition
		pushDown *plan.PushDown
	}

	// ChunkRange locates one column chunk inside the partition's file.
	// Decoding the bytes it points at belongs to the columnar file
	// decoder, not this layer.
	ChunkRange struct {
		Column      int
		Offset      int64
		Length      int64
		NumValues   int64
		Compression string
	}
)

func (s *ScanStage) Name() string {
	return "parquet_scan_" + s.id
}

func (s *ScanStage) Partition() *partition.ParquetPartition {
	return s.part
}

func (s *ScanStage) PushDown() *plan.PushDown {
	return s.pushDown
}

// Open re-reads the file's footer and verifies it still carries every
// projected column. Schema mismatches between files deliberately surface
// here, at read time, rather than during planning.
func (s *ScanStage) Open(ctx context.Context) ([]ChunkRange, error) {
	fm, err := parquetmeta.ReadMetadata(ctx, s.op, s.part.Location)
	if err != nil {
		return nil, fmt.Errorf("error opening scan for '%s': %w", s.part.Location, err)
	}
	if len(fm.Meta.RowGroups) == 0 {
		return nil, fmt.Errorf("%w in parquet file '%s'", parquetmeta.ErrNoRowGroups, s.part.Location)
	}

	fileColumns := len(fm.Meta.RowGroups[0].Columns)
	indexes := make([]int, 0, len(s.part.ColumnsMeta))
	for idx := range s.part.ColumnsMeta {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	ranges := make([]ChunkRange, 0, len(indexes))
	for _, idx := range indexes {
		if idx >= fileColumns {
			return nil, fmt.Errorf("%w: column %d not in parquet file '%s' (%d columns)", ErrColumnMismatch, idx, s.part.Location, fileColumns)
		}
		cm := s.part.ColumnsMeta[idx]
		ranges = append(ranges, ChunkRange{
			Column:      idx,
			Offset:      cm.Offset,
			Length:      cm.Length,
			NumValues:   cm.NumValues,
			Compression: cm.Compression,
		})
	}
	return ranges, nil
}
