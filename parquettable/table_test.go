package parquettable

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/floedb/floe/operator"
	"github.com/floedb/floe/parquetmeta"
	"github.com/floedb/floe/partition"
	"github.com/floedb/floe/pipeline"
	"github.com/floedb/floe/plan"
	"github.com/floedb/floe/schema"
	"github.com/floedb/floe/source"
	"github.com/floedb/floe/utils"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/writer"
)

const testSchemaStr = `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[{"Tag":"type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, name=MixedCase, repetitiontype=OPTIONAL"},{"Tag":"type=DOUBLE, name=Score, repetitiontype=OPTIONAL"},{"Tag":"type=INT64, name=Count, repetitiontype=OPTIONAL"}]}`

var allowInsecure = source.SecurityConfig{AllowInsecure: true}

func writeParquetFile(t *testing.T, path string, rows []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	pw, err := writer.NewJSONWriterFromWriter(testSchemaStr, f, 4)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, pw.Write(row))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, f.Close())
}

// newTestDir writes a.parquet (3 rows), b.parquet (2 rows) and a decoy text
// file, returning the dir and a local operator rooted at it.
func newTestDir(t *testing.T) (string, operator.Operator) {
	t.Helper()
	dir := t.TempDir()
	writeParquetFile(t, filepath.Join(dir, "a.parquet"), []string{
		`{"MixedCase":"a1","Score":1.5,"Count":1}`,
		`{"MixedCase":"a2","Score":2.5,"Count":2}`,
		`{"MixedCase":"a3","Score":3.5,"Count":3}`,
	})
	writeParquetFile(t, filepath.Join(dir, "b.parquet"), []string{
		`{"MixedCase":"b1","Score":4.5,"Count":4}`,
		`{"MixedCase":"b2","Score":5.5,"Count":5}`,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("decoy"), 0o644))

	op, err := operator.NewLocal(dir)
	require.NoError(t, err)
	return dir, op
}

func TestCreateValidation(t *testing.T) {
	_, op := newTestDir(t)
	ctx := context.Background()

	_, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, source.SecurityConfig{}, op)
	require.ErrorIs(t, err, ErrInsecureDisabled)

	_, err = Create(ctx, "default", FunctionName, 1, nil, allowInsecure, op)
	require.ErrorIs(t, err, ErrNeedsArguments)

	_, err = Create(ctx, "default", FunctionName, 1, []any{42}, allowInsecure, op)
	require.ErrorIs(t, err, ErrStringArgsOnly)

	_, err = Create(ctx, "default", FunctionName, 1, []any{"*.orc"}, allowInsecure, op)
	require.ErrorIs(t, err, ErrNoFilesMatched)

	// zero arguments and zero matches are distinct failures
	require.NotEqual(t, ErrNeedsArguments.Error(), ErrNoFilesMatched.Error())

	_, err = Create(ctx, "default", FunctionName, 1, []any{"["}, allowInsecure, op)
	require.ErrorIs(t, err, ErrGlobFailed)
	require.Contains(t, err.Error(), "[")
}

func TestCreateInfersSchemaFromFirstFile(t *testing.T) {
	_, op := newTestDir(t)

	table, err := Create(context.Background(), "default", FunctionName, 7, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	info := table.TableInfo()
	require.Equal(t, "'default'.'read_parquet'", info.Desc)
	require.Equal(t, FunctionName, info.Name)
	require.Equal(t, uint64(7), info.Ident.TableID)
	require.Equal(t, EngineName, info.Meta.Engine)
	require.Equal(t, time.Unix(0, 0).UTC(), info.Meta.CreatedOn)
	require.Equal(t, time.Unix(0, 0).UTC(), info.Meta.UpdatedOn)

	sch := info.Meta.Schema
	require.Equal(t, 3, sch.Len())
	require.Equal(t, schema.Field{Name: "mixedcase", Type: schema.String}, sch.Field(0))
	require.Equal(t, schema.Field{Name: "score", Type: schema.Float64}, sch.Field(1))
	require.Equal(t, schema.Field{Name: "count", Type: schema.Int64}, sch.Field(2))

	require.Equal(t, []any{"*.parquet"}, table.TableArgs())

	caps := table.Capabilities()
	require.True(t, caps.BenefitsFromColumnPruning)
	require.True(t, caps.SupportsEarlyFilter)
	require.True(t, caps.HasExactRowCount)
}

func TestReadPartitions(t *testing.T) {
	dir, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	stats, parts, err := table.ReadPartitions(ctx, nil)
	require.NoError(t, err)

	require.Equal(t, uint64(5), stats.ReadRows)
	require.True(t, stats.Exact)
	require.Equal(t, 2, stats.Partitions)
	require.Greater(t, stats.ReadBytes, uint64(0))
	require.Len(t, parts, 2)

	pa, err := partition.AsParquet(parts[0])
	require.NoError(t, err)
	pb, err := partition.AsParquet(parts[1])
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "a.parquet"), pa.Location)
	require.Equal(t, filepath.Join(dir, "b.parquet"), pb.Location)
	require.Equal(t, uint64(3), pa.NumRows)
	require.Equal(t, uint64(2), pb.NumRows)
	require.Len(t, pa.ColumnsMeta, 3)
	require.Len(t, pb.ColumnsMeta, 3)

	fm, err := parquetmeta.ReadMetadata(ctx, op, pa.Location)
	require.NoError(t, err)
	require.Equal(t, uint64(fm.Meta.Version), pa.FormatVersion)
	for _, cm := range pa.ColumnsMeta {
		require.Greater(t, cm.Length, int64(0))
		require.NotEmpty(t, cm.Compression)
	}
}

func TestReadPartitionsIsDeterministic(t *testing.T) {
	_, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	stats1, parts1, err := table.ReadPartitions(ctx, nil)
	require.NoError(t, err)
	stats2, parts2, err := table.ReadPartitions(ctx, nil)
	require.NoError(t, err)

	require.Equal(t, stats1, stats2)
	require.Len(t, parts2, len(parts1))
	for i := range parts1 {
		require.True(t, parts1[i].Equals(parts2[i]))
		require.Equal(t, parts1[i].Hash(), parts2[i].Hash())
	}
}

func TestReadPartitionsProjection(t *testing.T) {
	_, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	full, _, err := table.ReadPartitions(ctx, nil)
	require.NoError(t, err)

	pushDown := &plan.PushDown{Projection: []int{0}}
	stats, parts, err := table.ReadPartitions(ctx, pushDown)
	require.NoError(t, err)

	require.Equal(t, full.ReadRows, stats.ReadRows)
	require.Less(t, stats.ReadBytes, full.ReadBytes)

	for _, p := range parts {
		pp, err := partition.AsParquet(p)
		require.NoError(t, err)
		require.Len(t, pp.ColumnsMeta, 1)
		require.Contains(t, pp.ColumnsMeta, 0)
	}
}

func TestReadPartitionsLimit(t *testing.T) {
	_, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	stats, parts, err := table.ReadPartitions(ctx, &plan.PushDown{Limit: utils.Ptr(uint64(1))})
	require.NoError(t, err)

	require.Equal(t, uint64(1), stats.ReadRows)
	require.True(t, stats.Exact)
	require.Len(t, parts, 2)
}

func TestReadPartitionsMissingFile(t *testing.T) {
	dir, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	removed := filepath.Join(dir, "b.parquet")
	require.NoError(t, os.Remove(removed))

	_, parts, err := table.ReadPartitions(ctx, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), removed)
	require.Nil(t, parts)
}

func TestReadDataBuildsScanStages(t *testing.T) {
	_, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	_, parts, err := table.ReadPartitions(ctx, nil)
	require.NoError(t, err)

	pipe := pipeline.New()
	require.NoError(t, table.ReadData(parts, nil, pipe))
	require.Equal(t, len(parts), pipe.Len())

	stage, ok := pipe.Stages()[0].(*ScanStage)
	require.True(t, ok)
	require.True(t, stage.Partition().Equals(parts[0]))

	ranges, err := stage.Open(ctx)
	require.NoError(t, err)
	require.Len(t, ranges, len(stage.Partition().ColumnsMeta))
	for i, r := range ranges {
		require.Equal(t, i, r.Column)
		require.Greater(t, r.Length, int64(0))
	}

	// rebuilding from the same inputs appends an identical fragment
	pipe2 := pipeline.New()
	require.NoError(t, table.ReadData(parts, nil, pipe2))
	require.Equal(t, pipe.Len(), pipe2.Len())
	for i := range pipe.Stages() {
		require.Equal(t, pipe.Stages()[i].Name(), pipe2.Stages()[i].Name())
	}
}

type foreignPartition struct{}

func (foreignPartition) Kind() string { return "foreign" }

func (foreignPartition) Equals(_ partition.Partition) bool { return false }

func (foreignPartition) Hash() uint64 { return 0 }

func TestReadDataRejectsForeignKinds(t *testing.T) {
	_, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	pipe := pipeline.New()
	err = table.ReadData([]partition.Partition{foreignPartition{}}, nil, pipe)
	require.ErrorIs(t, err, partition.ErrWrongPartitionKind)
	require.Equal(t, 0, pipe.Len())
}

func TestScanStageColumnMismatch(t *testing.T) {
	dir, op := newTestDir(t)
	ctx := context.Background()

	// a partition claiming a column the file does not have, as happens
	// when later files do not share the first file's schema
	pp := &partition.ParquetPartition{
		Location:      filepath.Join(dir, "a.parquet"),
		FormatVersion: 1,
		NumRows:       3,
		ColumnsMeta: map[int]partition.ColumnMeta{
			9: {Offset: 4, Length: 10, Compression: "SNAPPY"},
		},
	}
	stage := &ScanStage{id: "test", op: op, part: pp}

	_, err := stage.Open(ctx)
	require.ErrorIs(t, err, ErrColumnMismatch)
	require.Contains(t, err.Error(), pp.Location)
}

func TestPartitionWireRoundTripThroughPlanning(t *testing.T) {
	_, op := newTestDir(t)
	ctx := context.Background()

	table, err := Create(ctx, "default", FunctionName, 1, []any{"*.parquet"}, allowInsecure, op)
	require.NoError(t, err)

	_, parts, err := table.ReadPartitions(ctx, nil)
	require.NoError(t, err)

	for _, p := range parts {
		b, err := partition.Encode(p)
		require.NoError(t, err)
		decoded, err := partition.Decode(b)
		require.NoError(t, err)
		require.True(t, decoded.Equals(p))
		require.Equal(t, p.Hash(), decoded.Hash())
	}
}
