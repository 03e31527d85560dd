package callback

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rwbrown002/xgboost/booster"
	"github.com/rwbrown002/xgboost/pkg/errors"
	"github.com/rwbrown002/xgboost/pkg/parallel"
)

// CVPredict aggregates out-of-fold predictions into a single array aligned
// to original row order and stores it in the result basket.
//
// It is a finalizer only: the per-iteration invocation is a silent no-op.
// Predictions use the rounds up to the best iteration when early stopping
// produced one, otherwise all rounds of the run; a linear booster is always
// predicted with a single round since iteration ranges mean nothing there.
// Rows never covered by any fold stay at NaN. Overlapping user-supplied
// folds make the aggregate meaningless rather than failing.
type CVPredict struct {
	retainBoosters bool
}

// NewCVPredict creates a prediction aggregator. With retainBoosters set,
// each fold's finalized booster is kept on the basket for external reuse.
func NewCVPredict(retainBoosters bool) *CVPredict {
	return &CVPredict{retainBoosters: retainBoosters}
}

// Name implements Callback.
func (cp *CVPredict) Name() string {
	return NameCVPredict
}

// Call implements Callback. Aggregation happens only at finalize.
func (cp *CVPredict) Call(_ *Env) error {
	return nil
}

// Finalize implements Finalizer.
func (cp *CVPredict) Finalize(env *Env) error {
	if env.Basket == nil {
		return errors.NewValueError("CVPredict.Finalize", "no result basket in training context")
	}
	if len(env.Folds) == 0 {
		return errors.NewValueError("CVPredict.Finalize", "no cross-validation folds in training context")
	}
	if env.Data == nil {
		return errors.NewValueError("CVPredict.Finalize", "no dataset in training context")
	}

	rows, _ := env.Data.Dims()
	cols := 1
	if env.NumClass > 1 {
		cols = env.NumClass
	}

	buf := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			buf.Set(i, j, math.NaN())
		}
	}

	// Fold predictions are independent, so they run concurrently; the
	// scatter into the shared buffer stays sequential.
	r := cp.iterationRange(env)
	foldPreds := make([]*mat.Dense, len(env.Folds))
	err := parallel.ForEach(len(env.Folds), func(i int) error {
		preds, err := env.Folds[i].Booster.Predict(env.Folds[i].TestData, r, cols > 1)
		if err != nil {
			return errors.Wrapf(err, "predicting fold %d", i)
		}
		foldPreds[i] = preds
		return nil
	})
	if err != nil {
		return err
	}

	for i, fold := range env.Folds {
		preds := foldPreds[i]
		pr, pc := preds.Dims()
		if pr != len(fold.TestIndices) || pc != cols {
			return errors.NewValueError("CVPredict.Finalize",
				"fold prediction shape does not match the held-out partition")
		}
		for k, rowIdx := range fold.TestIndices {
			for j := 0; j < cols; j++ {
				buf.Set(rowIdx, j, preds.At(k, j))
			}
		}
	}
	env.Basket.Prediction = buf

	if cp.retainBoosters {
		env.Basket.Boosters = env.Basket.Boosters[:0]
		for i, fold := range env.Folds {
			kept := fold.Booster
			if fin, ok := fold.Booster.(booster.ModelFinalizer); ok {
				model, err := fin.FinalizeModel()
				if err != nil {
					return errors.Wrapf(err, "finalizing fold %d booster", i)
				}
				kept = model
			}
			env.Basket.Boosters = append(env.Basket.Boosters, kept)
		}
	}
	return nil
}

// iterationRange picks the rounds to predict with.
func (cp *CVPredict) iterationRange(env *Env) booster.IterationRange {
	if env.Params["booster"] == "gblinear" {
		return booster.IterationRange{Begin: 1, End: 1}
	}
	end := env.EndIteration + 1
	if env.Basket.BestIteration > 0 {
		end = env.Basket.BestIteration + 1
	}
	return booster.IterationRange{Begin: 1, End: end}
}
