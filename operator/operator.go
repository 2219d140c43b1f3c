package operator

import (
	"context"
	"errors"

	pqsource "github.com/xitongsys/parquet-go/source"
)

var (
	ErrOutsideRoot = errors.New("location escapes operator root")
)

// Operator is the storage-access handle bound into a source. It opens
// locations as parquet file sources and expands glob patterns into concrete
// locations. Implementations must be safe for concurrent calls, this layer
// never serializes access to them.
type Operator interface {
	Name() string
	Open(ctx context.Context, location string) (pqsource.ParquetFile, error)
	Glob(ctx context.Context, pattern string) ([]string, error)
}
