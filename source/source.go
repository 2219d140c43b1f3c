package source

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/floedb/floe/partition"
	"github.com/floedb/floe/pipeline"
	"github.com/floedb/floe/plan"
	"github.com/floedb/floe/schema"
)

type (
	// Source is the contract any scannable entity implements for the
	// planner: report capabilities, enumerate partitions, and wire scan
	// stages into an execution pipeline.
	Source interface {
		TableInfo() *TableInfo
		Capabilities() plan.Capabilities

		// ReadPartitions returns the statistics and ordered partition set
		// for a scan, deterministic given the same push-down and the same
		// underlying file set at call time. It fails whole, never with
		// partial results.
		ReadPartitions(ctx context.Context, pushDown *plan.PushDown) (plan.Statistics, []partition.Partition, error)

		// ReadData appends the scan stages for an already-produced
		// partition sequence. It performs no I/O itself. The push-down
		// must be the same one used for ReadPartitions.
		ReadData(parts []partition.Partition, pushDown *plan.PushDown, pipe *pipeline.Pipeline) error
	}

	// TableFunction is a source constructed from call arguments rather
	// than catalog metadata.
	TableFunction interface {
		Source
		FunctionName() string
		TableArgs() []any
	}

	// Catalog issues table identities. The distributed catalog service is
	// an external collaborator, this layer only consumes the interface.
	Catalog interface {
		NextTableID(ctx context.Context) (uint64, error)
	}

	TableIdent struct {
		TableID uint64 `json:"table_id"`
		SeqInDB uint64 `json:"seq_in_db"`
	}

	TableMeta struct {
		Schema *schema.Schema `json:"schema"`
		// Engine distinguishes function tables from on-disk managed tables.
		Engine    string    `json:"engine"`
		CreatedOn time.Time `json:"created_on"`
		UpdatedOn time.Time `json:"updated_on"`
	}

	TableInfo struct {
		Ident TableIdent `json:"ident"`
		// Desc is the printable identity, 'db'.'name'.
		Desc string    `json:"desc"`
		Name string    `json:"name"`
		Meta TableMeta `json:"meta"`
	}

	// SecurityConfig is the slice of global configuration this layer
	// consults. It is passed in explicitly at construction time, never
	// read from a process-wide singleton.
	SecurityConfig struct {
		// AllowInsecure gates table functions that read arbitrary local
		// paths and therefore bypass normal access control.
		AllowInsecure bool
	}

	// MemoryCatalog is a process-local stand-in for the catalog service,
	// used by the planning surface and tests.
	MemoryCatalog struct {
		counter atomic.Uint64
	}
)

func (c *MemoryCatalog) NextTableID(_ context.Context) (uint64, error) {
	return c.counter.Add(1), nil
}
