package callback

import (
	"fmt"

	"github.com/rwbrown002/xgboost/pkg/errors"
	"github.com/rwbrown002/xgboost/pkg/log"
)

// Checkpoint saves the model during training.
//
// With a positive save period the model is persisted every time
// (iteration - begin_iteration) mod period == 0; with period 0 it is
// persisted only on the final iteration. The current iteration number is
// substituted into the path template, so "model_%04d.ubj" yields one file
// per checkpointed iteration.
type Checkpoint struct {
	pathTemplate string
	savePeriod   int
	logger       log.Logger
}

// NewCheckpoint creates a checkpoint callback. A negative save period is a
// configuration error.
func NewCheckpoint(pathTemplate string, savePeriod int) (*Checkpoint, error) {
	if savePeriod < 0 {
		return nil, errors.NewValidationError("save_period", "must be non-negative", savePeriod)
	}
	return &Checkpoint{
		pathTemplate: pathTemplate,
		savePeriod:   savePeriod,
		logger:       log.GetLoggerWithName("callback.checkpoint"),
	}, nil
}

// Name implements Callback.
func (c *Checkpoint) Name() string {
	return NameCheckpoint
}

// Call implements Callback.
func (c *Checkpoint) Call(env *Env) error {
	if env.Booster == nil {
		return errors.NewValueError("Checkpoint.Call", "no booster found in training context")
	}

	save := false
	if c.savePeriod > 0 {
		save = (env.Iteration-env.BeginIteration)%c.savePeriod == 0
	} else {
		save = env.Iteration == env.EndIteration
	}
	if !save {
		return nil
	}

	path := fmt.Sprintf(c.pathTemplate, env.Iteration)
	if err := env.Booster.SaveModel(path); err != nil {
		return errors.Wrapf(err, "saving checkpoint at iteration %d", env.Iteration)
	}
	c.logger.Debug("model checkpoint saved",
		log.IterationKey, env.Iteration,
		log.PathKey, path,
	)
	return nil
}
