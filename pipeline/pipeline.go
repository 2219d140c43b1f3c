package pipeline

type (
	// Stage is one unit of work appended to a pipeline by planning calls.
	// Stages do no I/O when appended, the scheduler drives them later.
	Stage interface {
		Name() string
	}

	// Pipeline is the ordered stage list a query plan hands to the
	// execution scheduler. This layer only appends, it never runs stages.
	Pipeline struct {
		stages []Stage
	}
)

func New() *Pipeline {
	return &Pipeline{}
}

// AddSource appends a source stage at the current append point. Appending is
// pure, calling it again with the same inputs yields the same plan fragment.
func (p *Pipeline) AddSource(s Stage) {
	p.stages = append(p.stages, s)
}

func (p *Pipeline) Stages() []Stage {
	return p.stages
}

func (p *Pipeline) Len() int {
	return len(p.stages)
}
