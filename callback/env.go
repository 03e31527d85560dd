package callback

import (
	"gonum.org/v1/gonum/mat"

	"github.com/rwbrown002/xgboost/booster"
)

// EvalScore is one metric's result for the current iteration. Std is only
// meaningful when the owning Env has HasStd set (cross-validation mode).
type EvalScore struct {
	Name  string
	Value float64
	Std   float64
}

// LogRow is one per-iteration record of the evaluation log.
type LogRow struct {
	Iteration int
	Scores    []EvalScore
	HasStd    bool
}

// Env is the mutable environment the driver passes to every callback
// invocation. Execution is strictly serial, so there is no locking; writes
// are visible to callbacks invoked later in the same iteration. The driver
// owns the Env for one training run.
//
// Exactly one of Booster or (Folds, Basket) is populated: a single booster
// handle for plain training, the fold list plus result basket for
// cross-validation.
type Env struct {
	// Iteration bounds. BeginIteration <= Iteration <= EndIteration holds for
	// every invocation; early stopping clamps EndIteration down when it fires.
	Iteration      int
	BeginIteration int
	EndIteration   int

	// Rank identifies this worker in distributed execution. Rank 0 is the
	// primary and the only rank that prints.
	Rank int

	// Scores holds the current iteration's evaluation results in metric
	// order. HasStd marks the standard-deviation companions as populated.
	Scores []EvalScore
	HasStd bool

	// Log is the append-only evaluation log; RecordEvaluation appends one
	// LogRow per iteration and reshapes it at finalize.
	Log []LogRow

	// Stop is the cooperative stop condition. Once any callback sets it, the
	// driver must stop looping after the current iteration's post-iteration
	// callbacks complete.
	Stop bool

	Booster booster.Booster
	Folds   []*booster.FoldPack
	Basket  *booster.CVBasket

	// Read-only configuration echoed for specific callbacks.
	NumParallelTree int
	NumClass        int
	Params          map[string]string
	Data            mat.Matrix
}

// IsPrimary reports whether this worker should perform user-visible side
// effects such as printing.
func (e *Env) IsPrimary() bool {
	return e.Rank == 0
}

// PlannedRounds returns the number of boosting rounds planned for this run.
// On a resumed run this counts only the remaining rounds, not the original
// full schedule.
func (e *Env) PlannedRounds() int {
	return e.EndIteration - e.BeginIteration + 1
}
