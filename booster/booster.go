// Package booster defines the contracts the callback layer consumes from the
// boosting engine: the trained-model handle, key/value attribute persistence,
// and the cross-validation fold records. The engine itself lives elsewhere;
// everything here is interface surface plus plain data carriers.
package booster

import (
	"gonum.org/v1/gonum/mat"
)

// Attribute keys the callback layer reads and writes on a booster handle.
// They make early-stopping state survive a checkpoint/resume cycle.
const (
	AttrBestScore     = "best_score"
	AttrBestIteration = "best_iteration"
	AttrBestMsg       = "best_msg"
	AttrBestTreeLimit = "best_ntreelimit"
)

// IterationRange bounds which boosting rounds a prediction uses.
// Begin is inclusive and End exclusive, both 1-based; the zero value means
// "all rounds".
type IterationRange struct {
	Begin int
	End   int
}

// Booster is an opaque trained-model handle managed by the boosting engine.
//
// Attribute storage is string-keyed and string-valued; callers needing
// numbers format and parse them. SetAttrs with an empty-string value deletes
// the key, mirroring the engine's attribute semantics.
type Booster interface {
	// Predict evaluates the model on data using only the boosting rounds in r.
	// When reshape is set and the model is multi-class, the result has one
	// column per class; otherwise it is a single-column matrix.
	Predict(data mat.Matrix, r IterationRange, reshape bool) (*mat.Dense, error)

	// Attr returns the persisted attribute for key, if present.
	Attr(key string) (string, bool)

	// SetAttrs persists the given attributes on the handle.
	SetAttrs(attrs map[string]string) error

	// SetParams pushes new training parameters into the live handle.
	SetParams(params map[string]string) error

	// DumpModel returns the model's textual representation, one line per entry.
	DumpModel() ([]string, error)

	// SaveModel persists the model to path.
	SaveModel(path string) error
}

// Best is the early-stopping outcome written onto a finished model.
type Best struct {
	Iteration int
	TreeLimit int
	Score     float64
	Message   string
}

// BestRecorder is implemented by booster handles that accept the
// early-stopping outcome directly, in addition to attribute persistence.
type BestRecorder interface {
	RecordBest(best Best)
}

// ModelFinalizer converts a live training handle into a standalone model
// object, optionally embedding the raw serialized bytes. Fold handles that
// implement it can be retained in the CV result basket.
type ModelFinalizer interface {
	FinalizeModel() (Booster, error)
}

// FoldPack is one partition of a cross-validation split: its own booster
// handle, the held-out row indices into the original dataset, and the
// held-out validation data.
type FoldPack struct {
	Booster     Booster
	TestIndices []int
	TestData    mat.Matrix
}

// CVBasket accumulates cross-validation results as callbacks finalize.
//
// Prediction holds the out-of-fold predictions aligned to original row
// order: one column for single-output models, one column per class for
// multi-class. Rows never covered by any fold stay at NaN. When user-supplied
// folds overlap, later folds overwrite earlier ones and the aggregate is
// meaningless; that is documented behavior, not an error.
type CVBasket struct {
	BestIteration int
	BestTreeLimit int
	BestScore     float64
	Prediction    *mat.Dense
	Boosters      []Booster
}
