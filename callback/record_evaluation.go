package callback

import (
	"sort"
	"strings"

	"github.com/rwbrown002/xgboost/pkg/errors"
)

// History is the columnar form of the evaluation log, produced at finalize.
// Iter holds one entry per recorded iteration; Values holds one series per
// metric column, keyed by the names in Columns. When standard deviations
// were recorded, each metric expands into adjacent "<name>_mean" and
// "<name>_std" columns rather than all means followed by all stds.
type History struct {
	Iter    []int
	Columns []string
	Values  map[string][]float64
}

// RecordEvaluation accumulates per-iteration metric values into the shared
// evaluation log and reshapes them into a History at finalize.
//
// The metric set is fixed by the first iteration; every subsequent iteration
// must report the same metrics. Metric-name separators '-' are replaced with
// '_' so column names are identifier-safe.
type RecordEvaluation struct {
	metricNames []string // raw names, fixed on first call
	columns     []string
	hasStd      bool
	initialized bool
	history     *History
}

// NewRecordEvaluation creates an evaluation logger callback.
func NewRecordEvaluation() *RecordEvaluation {
	return &RecordEvaluation{}
}

// Name implements Callback.
func (r *RecordEvaluation) Name() string {
	return NameRecordEvaluation
}

// Call implements Callback. It appends one row to env.Log.
func (r *RecordEvaluation) Call(env *Env) error {
	if !r.initialized {
		if err := r.init(env); err != nil {
			return err
		}
	} else if err := r.checkMetricSet(env.Scores); err != nil {
		return err
	}

	row := LogRow{
		Iteration: env.Iteration,
		Scores:    append([]EvalScore(nil), env.Scores...),
		HasStd:    env.HasStd,
	}
	env.Log = append(env.Log, row)
	return nil
}

func (r *RecordEvaluation) init(env *Env) error {
	if len(env.Scores) == 0 {
		return errors.NewValueError("RecordEvaluation.Call", "no evaluation results to record")
	}
	for _, s := range env.Scores {
		if s.Name == "" {
			return errors.NewValueError("RecordEvaluation.Call", "evaluation metric without a name")
		}
	}

	r.metricNames = make([]string, len(env.Scores))
	for i, s := range env.Scores {
		r.metricNames[i] = s.Name
	}
	r.hasStd = env.HasStd

	for _, name := range r.metricNames {
		n := normalizeMetricName(name)
		if r.hasStd {
			r.columns = append(r.columns, n+"_mean", n+"_std")
		} else {
			r.columns = append(r.columns, n)
		}
	}
	r.initialized = true
	return nil
}

// checkMetricSet verifies the iteration reports the same metric set that the
// first iteration fixed.
func (r *RecordEvaluation) checkMetricSet(scores []EvalScore) error {
	if len(scores) != len(r.metricNames) {
		return errors.NewValueError("RecordEvaluation.Call", "evaluation metric set changed during the run")
	}
	want := append([]string(nil), r.metricNames...)
	got := make([]string, len(scores))
	for i, s := range scores {
		got[i] = s.Name
	}
	sort.Strings(want)
	sort.Strings(got)
	for i := range want {
		if want[i] != got[i] {
			return errors.NewValueError("RecordEvaluation.Call", "evaluation metric set changed during the run")
		}
	}
	return nil
}

// Finalize implements Finalizer. It transposes the accumulated rows into a
// columnar History. The reshape is a pure function of the log, so applying
// it twice yields the same table.
func (r *RecordEvaluation) Finalize(env *Env) error {
	h := &History{
		Columns: append([]string(nil), r.columns...),
		Values:  make(map[string][]float64, len(r.columns)),
	}

	for _, row := range env.Log {
		h.Iter = append(h.Iter, row.Iteration)
		for _, s := range row.Scores {
			n := normalizeMetricName(s.Name)
			if row.HasStd {
				h.Values[n+"_mean"] = append(h.Values[n+"_mean"], s.Value)
				h.Values[n+"_std"] = append(h.Values[n+"_std"], s.Std)
			} else {
				h.Values[n] = append(h.Values[n], s.Value)
			}
		}
	}

	r.history = h
	return nil
}

// History returns the finalized evaluation table, or nil before finalize.
func (r *RecordEvaluation) History() *History {
	return r.history
}

// normalizeMetricName makes a metric name identifier-safe by replacing the
// '-' separator with '_'.
func normalizeMetricName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
