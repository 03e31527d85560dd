package callback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/rwbrown002/xgboost/booster"
)

// foldOver builds a fold whose stub booster predicts a constant value for
// every held-out row.
func foldOver(indices []int, value float64, cols int) *booster.FoldPack {
	sb := newStubBooster()
	sb.predictFn = func(_ mat.Matrix, r booster.IterationRange, _ bool) (*mat.Dense, error) {
		sb.lastRange = r
		out := mat.NewDense(len(indices), cols, nil)
		for i := range indices {
			for j := 0; j < cols; j++ {
				out.Set(i, j, value+float64(j)/10)
			}
		}
		return out, nil
	}
	return &booster.FoldPack{
		Booster:     sb,
		TestIndices: indices,
		TestData:    mat.NewDense(len(indices), 2, nil),
	}
}

func TestCVPredictDisjointFoldsCoverAllRows(t *testing.T) {
	env := &Env{
		Basket:         &booster.CVBasket{},
		Data:           mat.NewDense(6, 2, nil),
		BeginIteration: 1,
		EndIteration:   5,
		Folds: []*booster.FoldPack{
			foldOver([]int{0, 2, 4}, 1.0, 1),
			foldOver([]int{1, 3, 5}, 2.0, 1),
		},
	}

	cp := NewCVPredict(false)
	require.NoError(t, cp.Finalize(env))

	pred := env.Basket.Prediction
	require.NotNil(t, pred)
	r, c := pred.Dims()
	assert.Equal(t, 6, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2}, mat.Col(nil, 0, pred))
}

func TestCVPredictPartialCoverageLeavesNaN(t *testing.T) {
	env := &Env{
		Basket:         &booster.CVBasket{},
		Data:           mat.NewDense(4, 2, nil),
		BeginIteration: 1,
		EndIteration:   3,
		Folds: []*booster.FoldPack{
			foldOver([]int{0, 1}, 1.0, 1),
		},
	}

	cp := NewCVPredict(false)
	require.NoError(t, cp.Finalize(env))

	pred := env.Basket.Prediction
	assert.Equal(t, 1.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))
	assert.True(t, math.IsNaN(pred.At(2, 0)))
	assert.True(t, math.IsNaN(pred.At(3, 0)))
}

func TestCVPredictUsesBestIterationRange(t *testing.T) {
	fold := foldOver([]int{0, 1}, 1.0, 1)
	env := &Env{
		Basket:         &booster.CVBasket{BestIteration: 7},
		Data:           mat.NewDense(2, 2, nil),
		BeginIteration: 1,
		EndIteration:   20,
		Folds:          []*booster.FoldPack{fold},
	}

	cp := NewCVPredict(false)
	require.NoError(t, cp.Finalize(env))

	sb := fold.Booster.(*stubBooster)
	assert.Equal(t, booster.IterationRange{Begin: 1, End: 8}, sb.lastRange)
}

func TestCVPredictFullRangeWithoutBest(t *testing.T) {
	fold := foldOver([]int{0, 1}, 1.0, 1)
	env := &Env{
		Basket:         &booster.CVBasket{},
		Data:           mat.NewDense(2, 2, nil),
		BeginIteration: 1,
		EndIteration:   20,
		Folds:          []*booster.FoldPack{fold},
	}

	cp := NewCVPredict(false)
	require.NoError(t, cp.Finalize(env))

	sb := fold.Booster.(*stubBooster)
	assert.Equal(t, booster.IterationRange{Begin: 1, End: 21}, sb.lastRange)
}

func TestCVPredictLinearBoosterSingleRound(t *testing.T) {
	fold := foldOver([]int{0, 1}, 1.0, 1)
	env := &Env{
		Basket:         &booster.CVBasket{BestIteration: 7},
		Data:           mat.NewDense(2, 2, nil),
		BeginIteration: 1,
		EndIteration:   20,
		Params:         map[string]string{"booster": "gblinear"},
		Folds:          []*booster.FoldPack{fold},
	}

	cp := NewCVPredict(false)
	require.NoError(t, cp.Finalize(env))

	sb := fold.Booster.(*stubBooster)
	assert.Equal(t, booster.IterationRange{Begin: 1, End: 1}, sb.lastRange)
}

func TestCVPredictMulticlass(t *testing.T) {
	env := &Env{
		Basket:         &booster.CVBasket{},
		Data:           mat.NewDense(4, 2, nil),
		NumClass:       3,
		BeginIteration: 1,
		EndIteration:   2,
		Folds: []*booster.FoldPack{
			foldOver([]int{0, 1}, 1.0, 3),
			foldOver([]int{2, 3}, 2.0, 3),
		},
	}

	cp := NewCVPredict(false)
	require.NoError(t, cp.Finalize(env))

	pred := env.Basket.Prediction
	r, c := pred.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, 1.2, pred.At(0, 2), 1e-15)
	assert.InDelta(t, 2.1, pred.At(3, 1), 1e-15)
}

func TestCVPredictShapeMismatch(t *testing.T) {
	sb := newStubBooster()
	sb.predictFn = func(_ mat.Matrix, _ booster.IterationRange, _ bool) (*mat.Dense, error) {
		return mat.NewDense(1, 1, []float64{1}), nil
	}
	env := &Env{
		Basket:         &booster.CVBasket{},
		Data:           mat.NewDense(4, 2, nil),
		BeginIteration: 1,
		EndIteration:   1,
		Folds: []*booster.FoldPack{
			{Booster: sb, TestIndices: []int{0, 1}, TestData: mat.NewDense(2, 2, nil)},
		},
	}

	cp := NewCVPredict(false)
	assert.Error(t, cp.Finalize(env))
}

func TestCVPredictRetainsFinalizedBoosters(t *testing.T) {
	fb := &finalizableBooster{stubBooster: newStubBooster()}
	env := &Env{
		Basket:         &booster.CVBasket{},
		Data:           mat.NewDense(2, 2, nil),
		BeginIteration: 1,
		EndIteration:   1,
		Folds: []*booster.FoldPack{
			{Booster: fb, TestIndices: []int{0, 1}, TestData: mat.NewDense(2, 2, nil)},
		},
	}

	cp := NewCVPredict(true)
	require.NoError(t, cp.Finalize(env))

	require.Len(t, env.Basket.Boosters, 1)
	assert.Same(t, fb.finalized, env.Basket.Boosters[0])
}

func TestCVPredictRetainsRawBoosterWithoutFinalizer(t *testing.T) {
	sb := newStubBooster()
	env := &Env{
		Basket:         &booster.CVBasket{},
		Data:           mat.NewDense(2, 2, nil),
		BeginIteration: 1,
		EndIteration:   1,
		Folds: []*booster.FoldPack{
			{Booster: sb, TestIndices: []int{0, 1}, TestData: mat.NewDense(2, 2, nil)},
		},
	}

	cp := NewCVPredict(true)
	require.NoError(t, cp.Finalize(env))

	require.Len(t, env.Basket.Boosters, 1)
	assert.Same(t, sb, env.Basket.Boosters[0])
}

func TestCVPredictMissingContext(t *testing.T) {
	cp := NewCVPredict(false)

	assert.Error(t, cp.Finalize(&Env{}))
	assert.Error(t, cp.Finalize(&Env{Basket: &booster.CVBasket{}}))
	assert.Error(t, cp.Finalize(&Env{
		Basket: &booster.CVBasket{},
		Folds:  []*booster.FoldPack{foldOver([]int{0}, 1, 1)},
	}))
}

func TestCVPredictCallIsNoop(t *testing.T) {
	cp := NewCVPredict(false)
	assert.NoError(t, cp.Call(&Env{}))
}
