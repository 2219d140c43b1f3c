package plan

type (
	// Expression is an opaque handle to a filter predicate produced by the
	// planner. This layer never evaluates it, it only forwards it to
	// sources that support early filtering.
	Expression interface {
		String() string
	}

	// RawExpression carries a predicate as its source text.
	RawExpression string

	// PushDown is the planner's request to a source to avoid reading
	// unnecessary data. The zero value (or a nil *PushDown) means no
	// restriction: all columns, no filter, no limit.
	PushDown struct {
		// Projection is the ordered set of requested column indices.
		// nil means all columns.
		Projection []int
		// Filter is an optional predicate for early filtering.
		Filter Expression
		// Limit is an optional cap on the number of rows to produce.
		Limit *uint64
	}

	// Statistics is the aggregate read estimate returned alongside a
	// partition set, used by the scheduler for cost estimation.
	Statistics struct {
		ReadRows  uint64 `json:"read_rows"`
		ReadBytes uint64 `json:"read_bytes"`
		// Exact is true when the counts come from authoritative file
		// metadata rather than sampling.
		Exact      bool `json:"exact"`
		Partitions int  `json:"partitions"`
	}

	// Capabilities are the static flags a source reports so the planner
	// can decide what to push down and which estimates to trust.
	Capabilities struct {
		BenefitsFromColumnPruning bool
		SupportsEarlyFilter       bool
		HasExactRowCount          bool
	}
)

func (e RawExpression) String() string {
	return string(e)
}

// Columns reports whether the push-down restricts the projected column set.
func (pd *PushDown) Columns() ([]int, bool) {
	if pd == nil || pd.Projection == nil {
		return nil, false
	}
	return pd.Projection, true
}

// RowLimit returns the pushed row limit, if any.
func (pd *PushDown) RowLimit() (uint64, bool) {
	if pd == nil || pd.Limit == nil {
		return 0, false
	}
	return *pd.Limit, true
}
