package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwbrown002/xgboost/pkg/errors"
)

func runCheckpoint(t *testing.T, c *Checkpoint, bst *stubBooster, begin, end int) {
	t.Helper()
	env := &Env{Booster: bst, BeginIteration: begin, EndIteration: end}
	for i := begin; i <= end; i++ {
		env.Iteration = i
		require.NoError(t, c.Call(env))
	}
}

func TestCheckpointPeriodicSaves(t *testing.T) {
	bst := newStubBooster()
	c, err := NewCheckpoint("model_%04d.ubj", 3)
	require.NoError(t, err)

	runCheckpoint(t, c, bst, 1, 10)

	assert.Equal(t, []string{
		"model_0001.ubj",
		"model_0004.ubj",
		"model_0007.ubj",
		"model_0010.ubj",
	}, bst.saved)
}

func TestCheckpointZeroPeriodSavesFinalOnly(t *testing.T) {
	bst := newStubBooster()
	c, err := NewCheckpoint("model_%d.ubj", 0)
	require.NoError(t, err)

	runCheckpoint(t, c, bst, 1, 5)

	assert.Equal(t, []string{"model_5.ubj"}, bst.saved)
}

func TestCheckpointNegativePeriod(t *testing.T) {
	_, err := NewCheckpoint("model_%d.ubj", -1)
	require.Error(t, err)
	var ve *errors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "save_period", ve.ParamName)
}

func TestCheckpointHonorsShortenedRun(t *testing.T) {
	bst := newStubBooster()
	c, err := NewCheckpoint("model_%d.ubj", 0)
	require.NoError(t, err)

	// Early stopping moved the end forward; the final save follows it.
	env := &Env{Booster: bst, BeginIteration: 1, EndIteration: 10}
	for i := 1; i <= 4; i++ {
		env.Iteration = i
		if i == 4 {
			env.EndIteration = 4
		}
		require.NoError(t, c.Call(env))
	}

	assert.Equal(t, []string{"model_4.ubj"}, bst.saved)
}

func TestCheckpointNoBooster(t *testing.T) {
	c, err := NewCheckpoint("model_%d.ubj", 1)
	require.NoError(t, err)

	env := &Env{Iteration: 1, BeginIteration: 1, EndIteration: 1}
	assert.Error(t, c.Call(env))
}

func TestCheckpointSaveErrorIsWrapped(t *testing.T) {
	bst := newStubBooster()
	bst.saveErr = errors.New("disk full")
	c, err := NewCheckpoint("model_%d.ubj", 1)
	require.NoError(t, err)

	env := &Env{Booster: bst, Iteration: 1, BeginIteration: 1, EndIteration: 1}
	err = c.Call(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "iteration 1")
}
