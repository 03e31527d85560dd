package callback

import (
	"fmt"

	"github.com/rwbrown002/xgboost/pkg/errors"
)

// Schedule resolves a training parameter's value for one iteration of the
// run. offset is zero-based within this run; total is the number of rounds
// planned for this run.
type Schedule interface {
	valueAt(offset, total int) (interface{}, error)
	// seqLen returns the fixed sequence length, or -1 for function schedules.
	seqLen() int
}

type seqSchedule []interface{}

func (s seqSchedule) valueAt(offset, _ int) (interface{}, error) {
	if offset < 0 || offset >= len(s) {
		return nil, errors.Newf("schedule offset %d out of range [0, %d)", offset, len(s))
	}
	return s[offset], nil
}

func (s seqSchedule) seqLen() int { return len(s) }

// Sequence schedules one value per iteration. The sequence length must equal
// the number of rounds planned for the run it is used in; on a resumed run
// that is the remaining rounds, not the original full schedule.
func Sequence(values ...interface{}) Schedule {
	return seqSchedule(values)
}

type funcSchedule func(iteration, totalIterations int) interface{}

func (f funcSchedule) valueAt(offset, total int) (interface{}, error) {
	return f(offset, total), nil
}

func (f funcSchedule) seqLen() int { return -1 }

// Func schedules values by calling f with the zero-based iteration offset
// and the total planned iterations of the run.
func Func(f func(iteration, totalIterations int) interface{}) Schedule {
	return funcSchedule(f)
}

// Parameters whose values are baked into the model structure; changing them
// mid-training corrupts the model, so the scheduler rejects them outright.
var protectedParams = map[string]struct{}{
	"num_class":        {},
	"num_output_group": {},
	"size_leaf_vector": {},
	"updater_seq":      {},
}

// ResetParameter pushes a new parameter set onto the booster (or every fold
// booster in cross-validation) before each iteration, resolved from the
// configured schedules.
type ResetParameter struct {
	schedules map[string]Schedule
	validated bool
}

// NewResetParameter creates a parameter scheduler over the given schedules.
func NewResetParameter(schedules map[string]Schedule) *ResetParameter {
	return &ResetParameter{schedules: schedules}
}

// Name implements Callback.
func (rp *ResetParameter) Name() string {
	return NameResetParameter
}

// RunsBeforeIteration implements PreIteration: parameters must be in place
// before the engine performs the boosting step.
func (rp *ResetParameter) RunsBeforeIteration() bool {
	return true
}

// Call implements Callback.
func (rp *ResetParameter) Call(env *Env) error {
	if !rp.validated {
		if err := rp.validate(env); err != nil {
			return err
		}
	}

	total := env.PlannedRounds()
	offset := env.Iteration - env.BeginIteration
	params := make(map[string]string, len(rp.schedules))
	for name, sched := range rp.schedules {
		value, err := sched.valueAt(offset, total)
		if err != nil {
			return errors.Wrapf(err, "resolving parameter %q", name)
		}
		params[name] = fmt.Sprint(value)
	}

	switch {
	case env.Booster != nil:
		if err := env.Booster.SetParams(params); err != nil {
			return errors.Wrap(err, "resetting parameters")
		}
	case len(env.Folds) > 0:
		for i, fold := range env.Folds {
			if err := fold.Booster.SetParams(params); err != nil {
				return errors.Wrapf(err, "resetting parameters on fold %d", i)
			}
		}
	default:
		return errors.NewValueError("ResetParameter.Call", "no booster found in training context")
	}
	return nil
}

// validate runs the configuration checks once, before any parameter is
// pushed. Failures here are fatal configuration errors.
func (rp *ResetParameter) validate(env *Env) error {
	if len(rp.schedules) == 0 {
		return errors.NewValidationError("schedules", "must contain at least one parameter schedule", rp.schedules)
	}

	total := env.PlannedRounds()
	for name, sched := range rp.schedules {
		if _, protected := protectedParams[name]; protected {
			return errors.NewValidationError(name, "cannot be changed during training", name)
		}
		if sched == nil {
			return errors.NewValidationError(name, "schedule must not be nil", nil)
		}
		if n := sched.seqLen(); n >= 0 && n != total {
			return errors.NewValidationError(name,
				fmt.Sprintf("schedule length must equal the %d iterations planned for this run", total), n)
		}
	}
	rp.validated = true
	return nil
}
