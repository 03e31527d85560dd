// Standard attribute keys for training-loop logging.
//
// Using these keys keeps records consistent across callbacks so logs can be
// filtered by component, iteration, or metric. Keys follow a hierarchical
// naming convention ("training.iteration", "metrics.name").

package log

// Component and operation context.
const (
	// ComponentKey identifies which component emitted the record.
	// Examples: "callback.early_stopping", "callback.checkpoint"
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	// Examples: "call", "finalize", "save"
	OperationKey = "ml.operation"
)

// Training progress.
const (
	// IterationKey records the current boosting iteration.
	IterationKey = "training.iteration"

	// BestIterationKey records the iteration holding the best tracked score.
	BestIterationKey = "training.best_iteration"

	// StoppingRoundsKey records the early-stopping patience window.
	StoppingRoundsKey = "training.stopping_rounds"
)

// Metrics.
const (
	// MetricKey names the evaluation metric a record refers to.
	MetricKey = "metrics.name"

	// ScoreKey records a metric value.
	ScoreKey = "metrics.score"
)

// Artifacts.
const (
	// PathKey records a filesystem path written by a callback.
	PathKey = "artifact.path"
)
