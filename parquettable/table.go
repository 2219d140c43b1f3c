package parquettable

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/floedb/floe/gologger"
	"github.com/floedb/floe/operator"
	"github.com/floedb/floe/parquetmeta"
	"github.com/floedb/floe/plan"
	"github.com/floedb/floe/source"
)

const (
	// FunctionName is how the table function is addressed in queries.
	FunctionName = "read_parquet"
	// EngineName tags the inferred table metadata so it is
	// distinguishable from on-disk managed tables.
	EngineName = "SystemReadParquet"
)

var (
	ErrInsecureDisabled = errors.New("should enable allow_insecure to use table function read_parquet")
	ErrNeedsArguments   = errors.New("read_parquet needs at least one argument")
	ErrStringArgsOnly   = errors.New("read_parquet only accepts string arguments")
	ErrNoFilesMatched   = errors.New("no matched files found for read_parquet")
	ErrGlobFailed       = errors.New("glob expansion failed")

	logger = gologger.NewLogger()
)

// ParquetTable materializes file-glob arguments into a scannable source.
// It is immutable after Create and safe to share across workers.
type ParquetTable struct {
	tableArgs     []any
	fileLocations []string
	tableInfo     *source.TableInfo
	op            operator.Operator
}

// Create builds the read_parquet table function. The security config is
// passed in explicitly, the function reads arbitrary local paths and
// therefore must be gated by the caller's configuration.
func Create(
	ctx context.Context,
	databaseName string,
	tableFuncName string,
	tableID uint64,
	tableArgs []any,
	sec source.SecurityConfig,
	op operator.Operator,
) (source.TableFunction, error) {
	if !sec.AllowInsecure {
		return nil, ErrInsecureDisabled
	}

	if len(tableArgs) == 0 {
		return nil, ErrNeedsArguments
	}

	var fileLocations []string
	for _, arg := range tableArgs {
		pattern, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("argument %v: %w", arg, ErrStringArgsOnly)
		}
		matches, err := op.Glob(ctx, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w for pattern %q: %s", ErrGlobFailed, pattern, err.Error())
		}
		fileLocations = append(fileLocations, matches...)
	}

	if len(fileLocations) == 0 {
		return nil, ErrNoFilesMatched
	}
	sort.Strings(fileLocations)

	// Infer schema from the first file only and assume every other file
	// matches it. Mismatches surface as a read-time error instead of a
	// second full metadata pass here.
	sch, err := parquetmeta.InferSchema(ctx, op, fileLocations[0])
	if err != nil {
		return nil, fmt.Errorf("error inferring schema: %w", err)
	}

	logger.Debug().Str("function", tableFuncName).Int("files", len(fileLocations)).Msg("created parquet table function")

	return &ParquetTable{
		tableArgs:     tableArgs,
		fileLocations: fileLocations,
		tableInfo: &source.TableInfo{
			Ident: source.TableIdent{TableID: tableID},
			Desc:  fmt.Sprintf("'%s'.'%s'", databaseName, tableFuncName),
			Name:  tableFuncName,
			Meta: source.TableMeta{
				Schema: sch,
				Engine: EngineName,
				// The function has no catalog-durable lifecycle, so the
				// timestamps are fixed.
				CreatedOn: time.Unix(0, 0).UTC(),
				UpdatedOn: time.Unix(0, 0).UTC(),
			},
		},
		op: op,
	}, nil
}

func (t *ParquetTable) TableInfo() *source.TableInfo {
	return t.tableInfo
}

func (t *ParquetTable) Capabilities() plan.Capabilities {
	return plan.Capabilities{
		BenefitsFromColumnPruning: true,
		SupportsEarlyFilter:       true,
		HasExactRowCount:          true,
	}
}

func (t *ParquetTable) FunctionName() string {
	return t.tableInfo.Name
}

func (t *ParquetTable) TableArgs() []any {
	args := make([]any, len(t.tableArgs))
	copy(args, t.tableArgs)
	return args
}

// FileLocations returns the resolved file list, for introspection.
func (t *ParquetTable) FileLocations() []string {
	locations := make([]string, len(t.fileLocations))
	copy(locations, t.fileLocations)
	return locations
}
