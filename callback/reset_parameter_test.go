package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwbrown002/xgboost/booster"
	"github.com/rwbrown002/xgboost/pkg/errors"
)

func TestResetParameterSequence(t *testing.T) {
	bst := newStubBooster()
	rp := NewResetParameter(map[string]Schedule{
		"learning_rate": Sequence(0.1, 0.05, 0.01),
	})
	env := &Env{Booster: bst, BeginIteration: 1, EndIteration: 3}

	for i := 1; i <= 3; i++ {
		env.Iteration = i
		require.NoError(t, rp.Call(env))
	}

	require.Len(t, bst.paramCalls, 3)
	assert.Equal(t, "0.1", bst.paramCalls[0]["learning_rate"])
	assert.Equal(t, "0.05", bst.paramCalls[1]["learning_rate"])
	assert.Equal(t, "0.01", bst.paramCalls[2]["learning_rate"])
}

func TestResetParameterFunc(t *testing.T) {
	bst := newStubBooster()
	rp := NewResetParameter(map[string]Schedule{
		"learning_rate": Func(func(iteration, total int) interface{} {
			return 0.1 * float64(total-iteration) / float64(total)
		}),
	})
	env := &Env{Booster: bst, BeginIteration: 1, EndIteration: 4}

	for i := 1; i <= 4; i++ {
		env.Iteration = i
		require.NoError(t, rp.Call(env))
	}

	require.Len(t, bst.paramCalls, 4)
	assert.Equal(t, "0.1", bst.paramCalls[0]["learning_rate"])
	assert.Equal(t, "0.025", bst.paramCalls[3]["learning_rate"])
}

func TestResetParameterLengthMismatch(t *testing.T) {
	bst := newStubBooster()
	rp := NewResetParameter(map[string]Schedule{
		"learning_rate": Sequence(0.1, 0.05),
	})
	env := &Env{Booster: bst, Iteration: 1, BeginIteration: 1, EndIteration: 3}

	err := rp.Call(env)
	require.Error(t, err)
	var ve *errors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "learning_rate", ve.ParamName)
}

func TestResetParameterResumedRunLength(t *testing.T) {
	// A resumed run spanning iterations 6..10 plans 5 rounds, so a 5-value
	// sequence fits even though the original training had 10.
	bst := newStubBooster()
	rp := NewResetParameter(map[string]Schedule{
		"learning_rate": Sequence(0.5, 0.4, 0.3, 0.2, 0.1),
	})
	env := &Env{Booster: bst, BeginIteration: 6, EndIteration: 10}

	for i := 6; i <= 10; i++ {
		env.Iteration = i
		require.NoError(t, rp.Call(env))
	}

	require.Len(t, bst.paramCalls, 5)
	assert.Equal(t, "0.5", bst.paramCalls[0]["learning_rate"])
	assert.Equal(t, "0.1", bst.paramCalls[4]["learning_rate"])
}

func TestResetParameterProtected(t *testing.T) {
	for _, name := range []string{"num_class", "num_output_group", "size_leaf_vector", "updater_seq"} {
		t.Run(name, func(t *testing.T) {
			rp := NewResetParameter(map[string]Schedule{
				name: Sequence(1),
			})
			env := &Env{Booster: newStubBooster(), Iteration: 1, BeginIteration: 1, EndIteration: 1}
			assert.Error(t, rp.Call(env))
		})
	}
}

func TestResetParameterEmptySchedules(t *testing.T) {
	rp := NewResetParameter(nil)
	env := &Env{Booster: newStubBooster(), Iteration: 1, BeginIteration: 1, EndIteration: 1}
	assert.Error(t, rp.Call(env))
}

func TestResetParameterFansOutToFolds(t *testing.T) {
	folds := []*booster.FoldPack{
		{Booster: newStubBooster()},
		{Booster: newStubBooster()},
		{Booster: newStubBooster()},
	}
	rp := NewResetParameter(map[string]Schedule{
		"learning_rate": Sequence(0.1, 0.05),
	})
	env := &Env{Folds: folds, BeginIteration: 1, EndIteration: 2}

	for i := 1; i <= 2; i++ {
		env.Iteration = i
		require.NoError(t, rp.Call(env))
	}

	for _, fold := range folds {
		sb := fold.Booster.(*stubBooster)
		require.Len(t, sb.paramCalls, 2)
		assert.Equal(t, "0.1", sb.paramCalls[0]["learning_rate"])
		assert.Equal(t, "0.05", sb.paramCalls[1]["learning_rate"])
	}
}

func TestResetParameterRunsBeforeIteration(t *testing.T) {
	rp := NewResetParameter(map[string]Schedule{"learning_rate": Sequence(0.1)})
	assert.True(t, rp.RunsBeforeIteration())
}

func TestResetParameterNoBooster(t *testing.T) {
	rp := NewResetParameter(map[string]Schedule{"learning_rate": Sequence(0.1)})
	env := &Env{Iteration: 1, BeginIteration: 1, EndIteration: 1}
	assert.Error(t, rp.Call(env))
}
