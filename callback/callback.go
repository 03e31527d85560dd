// Package callback implements the training callback layer for gradient
// boosting: an ordered registry with a fixed tail ordering, a shared mutable
// environment passed to every invocation, and the stateful callbacks that
// plug progress printing, metric logging, early stopping, checkpointing,
// parameter scheduling, cross-validation prediction aggregation, and
// linear-coefficient tracking into a training loop without modifying the
// loop itself.
package callback

// Callback is one unit of training-loop behavior with a stable identity.
// Call runs once per iteration; it runs after the boosting step unless the
// callback also implements PreIteration. Internal state (such as a best
// score) is private to the instance and must not be shared across runs.
type Callback interface {
	// Name returns the callback's identity, unique within a registry.
	Name() string

	// Call is invoked by the driver once per iteration with the shared
	// training environment. Any error aborts the run.
	Call(env *Env) error
}

// PreIteration is implemented by callbacks that must run before each
// boosting step instead of after it.
type PreIteration interface {
	RunsBeforeIteration() bool
}

// Finalizer is implemented by callbacks with a finalize phase. Finalize runs
// exactly once, after the loop has produced its final iteration or stopped
// early.
type Finalizer interface {
	Finalize(env *Env) error
}

// Callback names used for registry lookups and tail relocation.
const (
	NamePrintEvaluation  = "print_evaluation"
	NameRecordEvaluation = "record_evaluation"
	NameResetParameter   = "reset_parameter"
	NameCheckpoint       = "checkpoint"
	NameEarlyStopping    = "early_stop"
	NameCVPredict        = "cv_predict"
	NameCoefHistory      = "coef_history"
)

// DefaultTailOrder pins the named callbacks to the end of the invocation
// sequence: early stopping must observe every other callback's work before
// deciding to stop, and cross-validation prediction must run after early
// stopping has fixed the best iteration.
var DefaultTailOrder = []string{NameEarlyStopping, NameCVPredict}
