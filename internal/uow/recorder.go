package uow

type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeBatch Mode = "batch"
)

type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
)

// Recorder observes every finished unit of work, auto-committed or batched.
type Recorder interface {
	ObserveUnit(name string, mode Mode, outcome Outcome, ops int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveUnit(string, Mode, Outcome, int) {}
