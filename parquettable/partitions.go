package parquettable

import (
	"context"
	"fmt"

	"github.com/floedb/floe/parquetmeta"
	"github.com/floedb/floe/partition"
	"github.com/floedb/floe/pipeline"
	"github.com/floedb/floe/plan"
)

// ReadPartitions re-reads every file's footer on every call. There is no
// caching between calls: files discovered or changed since the last plan are
// picked up, and a file that disappeared fails the whole call.
func (t *ParquetTable) ReadPartitions(ctx context.Context, pushDown *plan.PushDown) (plan.Statistics, []partition.Partition, error) {
	var stats plan.Statistics
	parts := make([]partition.Partition, 0, len(t.fileLocations))

	for _, location := range t.fileLocations {
		fm, err := parquetmeta.ReadMetadata(ctx, t.op, location)
		if err != nil {
			return plan.Statistics{}, nil, fmt.Errorf("error reading partitions for %s: %w", t.tableInfo.Desc, err)
		}
		part, readBytes := partitionFromMeta(fm, pushDown)
		parts = append(parts, part)
		stats.ReadRows += uint64(fm.Meta.NumRows)
		stats.ReadBytes += readBytes
	}

	if limit, ok := pushDown.RowLimit(); ok && limit < stats.ReadRows {
		stats.ReadRows = limit
	}
	stats.Exact = true
	stats.Partitions = len(parts)

	return stats, parts, nil
}

// partitionFromMeta turns one file's footer into a partition descriptor plus
// the byte estimate its projected chunks contribute.
func partitionFromMeta(fm *parquetmeta.FileMeta, pushDown *plan.PushDown) (partition.Partition, uint64) {
	columnsMeta := make(map[int]partition.ColumnMeta)
	var readBytes uint64

	projection, pruned := pushDown.Columns()
	projected := make(map[int]bool, len(projection))
	for _, idx := range projection {
		projected[idx] = true
	}

	if len(fm.Meta.RowGroups) > 0 {
		rg := fm.Meta.RowGroups[0]
		for idx, col := range rg.Columns {
			if pruned && !projected[idx] {
				continue
			}
			md := col.MetaData
			offset := md.DataPageOffset
			if md.DictionaryPageOffset != nil {
				offset = *md.DictionaryPageOffset
			}
			cm := partition.ColumnMeta{
				Offset:      offset,
				Length:      md.TotalCompressedSize,
				NumValues:   md.NumValues,
				Compression: md.Codec.String(),
			}
			if md.Statistics != nil {
				cm.MinValue = md.Statistics.Min
				cm.MaxValue = md.Statistics.Max
			}
			columnsMeta[idx] = cm
			readBytes += uint64(md.TotalCompressedSize)
		}
	}

	return partition.NewParquet(fm.Location, uint64(fm.Meta.Version), uint64(fm.Meta.NumRows), columnsMeta), readBytes
}

// ReadData wires one scan stage per accepted partition into the pipeline.
// No I/O happens here, the stages open their files when the scheduler runs
// them.
func (t *ParquetTable) ReadData(parts []partition.Partition, pushDown *plan.PushDown, pipe *pipeline.Pipeline) error {
	for _, p := range parts {
		pp, err := partition.AsParquet(p)
		if err != nil {
			return fmt.Errorf("error building scan for %s: %w", t.tableInfo.Desc, err)
		}
		// the stage id derives from the partition's identity hash so
		// rebuilding the same plan fragment yields the same stages
		pipe.AddSource(&ScanStage{
			id:       fmt.Sprintf("%016x", pp.Hash()),
			op:       t.op,
			part:     pp,
			pushDown: pushDown,
		})
	}
	return nil
}
