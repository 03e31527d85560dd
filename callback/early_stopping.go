package callback

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rwbrown002/xgboost/booster"
	"github.com/rwbrown002/xgboost/pkg/errors"
	"github.com/rwbrown002/xgboost/pkg/log"
)

// StopState is the early-stopping lifecycle state.
type StopState int

const (
	// StateUninitialized means the callback has not seen an iteration yet.
	StateUninitialized StopState = iota
	// StateActive means best-score tracking is running.
	StateActive
	// StateStopped is terminal for the run.
	StateStopped
)

// DefaultScoreTolerance bounds the allowed divergence between the internally
// tracked best score and the externally persisted one at finalize. The value
// absorbs floating-point truncation through the string attribute round-trip;
// it is a tunable, not a guaranteed precision bound.
const DefaultScoreTolerance = 1e-14

// metric families where a higher score is better.
var maximizeMetricFamilies = []string{"auc", "aucpr", "map", "ndcg"}

// EarlyStopping stops training when the tracked metric has not improved for
// a configured number of rounds.
//
// The best score, iteration, message, and tree limit are persisted as
// booster attributes after every improvement, so a checkpoint saved at any
// point captures them and a resumed run recovers them instead of resetting.
// At finalize the internal best score is reconciled against the persisted
// one and the outcome is written onto the result object.
type EarlyStopping struct {
	rounds      int
	metric      string // explicit metric name; empty means resolve lazily
	maximize    bool
	maximizeSet bool
	verbose     bool
	tolerance   float64
	out         io.Writer
	logger      log.Logger

	state      StopState
	metricName string // resolved, normalized
	best       booster.Best
}

// EarlyStoppingOption configures an EarlyStopping callback.
type EarlyStoppingOption func(*EarlyStopping)

// WithMetric selects the metric column that drives stopping. The name is
// matched after normalizing '-' to '_'. Without it, the last metric column
// is used when several exist.
func WithMetric(name string) EarlyStoppingOption {
	return func(es *EarlyStopping) { es.metric = name }
}

// WithMaximize forces the improvement direction. Without it, the direction
// is inferred from the metric name: higher-is-better for the AUC, MAP, and
// NDCG families, minimize otherwise.
func WithMaximize(maximize bool) EarlyStoppingOption {
	return func(es *EarlyStopping) {
		es.maximize = maximize
		es.maximizeSet = true
	}
}

// WithVerbose enables printing the stored best message when stopping fires.
func WithVerbose(verbose bool) EarlyStoppingOption {
	return func(es *EarlyStopping) { es.verbose = verbose }
}

// WithScoreTolerance overrides DefaultScoreTolerance.
func WithScoreTolerance(tol float64) EarlyStoppingOption {
	return func(es *EarlyStopping) { es.tolerance = tol }
}

// WithStopWriter redirects the verbose stop message, primarily for tests.
func WithStopWriter(w io.Writer) EarlyStoppingOption {
	return func(es *EarlyStopping) { es.out = w }
}

// NewEarlyStopping creates an early-stopping callback with the given
// patience window.
func NewEarlyStopping(stoppingRounds int, opts ...EarlyStoppingOption) *EarlyStopping {
	es := &EarlyStopping{
		rounds:    stoppingRounds,
		tolerance: DefaultScoreTolerance,
		out:       os.Stdout,
		logger:    log.GetLoggerWithName("callback.early_stopping"),
		state:     StateUninitialized,
	}
	for _, opt := range opts {
		opt(es)
	}
	return es
}

// Name implements Callback.
func (es *EarlyStopping) Name() string {
	return NameEarlyStopping
}

// State returns the current lifecycle state.
func (es *EarlyStopping) State() StopState {
	return es.state
}

// Best returns the best record tracked so far.
func (es *EarlyStopping) Best() booster.Best {
	return es.best
}

// Call implements Callback. The first invocation initializes the state
// machine; later invocations apply the per-iteration transition.
func (es *EarlyStopping) Call(env *Env) error {
	if es.state == StateUninitialized {
		if err := es.init(env); err != nil {
			return err
		}
	}
	if es.state == StateStopped {
		return nil
	}

	score, err := es.currentScore(env)
	if err != nil {
		return err
	}

	improved := score > es.best.Score
	if !es.maximize {
		improved = score < es.best.Score
	}

	switch {
	case improved:
		msg, err := formatEvalLine(env.Iteration, env.Scores, env.HasStd)
		if err != nil {
			return err
		}
		es.best = booster.Best{
			Iteration: env.Iteration,
			TreeLimit: env.Iteration * parallelTrees(env),
			Score:     score,
			Message:   msg,
		}
		if env.Booster != nil {
			if err := es.persistBest(env.Booster); err != nil {
				return err
			}
		}

	case env.Iteration-es.best.Iteration >= es.rounds:
		es.state = StateStopped
		env.Stop = true
		env.EndIteration = env.Iteration
		if es.verbose && env.IsPrimary() {
			fmt.Fprintf(es.out, "Stopping. Best iteration:\n%s\n\n", es.best.Message)
		}

	default:
		// Plateau within the patience window.
	}
	return nil
}

// init resolves the driving metric and direction, recovers persisted state
// for resumed runs, and moves the machine to ACTIVE.
func (es *EarlyStopping) init(env *Env) error {
	if len(env.Scores) == 0 {
		return errors.NewValueError("EarlyStopping.Call",
			"for early stopping you need at least one set in evaluation results")
	}
	if env.Booster == nil && (len(env.Folds) == 0 || env.Basket == nil) {
		return errors.NewValueError("EarlyStopping.Call",
			"requires either a booster handle or cross-validation folds with a result basket")
	}

	if err := es.resolveMetric(env.Scores); err != nil {
		return err
	}
	if !es.maximizeSet {
		es.maximize = inferMaximize(es.metricName)
		es.maximizeSet = true
	}

	sentinel := math.Inf(1)
	if es.maximize {
		sentinel = math.Inf(-1)
	}
	es.best = booster.Best{Iteration: 0, Score: sentinel}

	if env.Booster != nil {
		recovered, err := es.recoverBest(env.Booster)
		if err != nil {
			return err
		}
		if !recovered {
			// Persist the sentinel so a checkpoint taken before the first
			// improvement still resumes cleanly.
			attrs := map[string]string{
				booster.AttrBestScore:     formatScore(es.best.Score),
				booster.AttrBestIteration: strconv.Itoa(es.best.Iteration),
			}
			if err := env.Booster.SetAttrs(attrs); err != nil {
				return errors.Wrap(err, "persisting initial early-stopping state")
			}
		}
	}

	es.logger.Info("early stopping enabled",
		log.MetricKey, es.metricName,
		log.StoppingRoundsKey, es.rounds,
		"maximize", es.maximize,
	)
	es.state = StateActive
	return nil
}

// resolveMetric picks the metric column that drives stopping.
func (es *EarlyStopping) resolveMetric(scores []EvalScore) error {
	if es.metric != "" {
		want := normalizeMetricName(es.metric)
		for _, s := range scores {
			if normalizeMetricName(s.Name) == want {
				es.metricName = want
				return nil
			}
		}
		return errors.NewValueError("EarlyStopping.Call",
			fmt.Sprintf("requested early-stopping metric %q not found in evaluation results", es.metric))
	}

	es.metricName = normalizeMetricName(scores[len(scores)-1].Name)
	if len(scores) > 1 {
		errors.Warn(errors.NewDefaultMetricWarning(es.metricName))
	}
	return nil
}

// currentScore reads the resolved metric's value for this iteration.
func (es *EarlyStopping) currentScore(env *Env) (float64, error) {
	for _, s := range env.Scores {
		if normalizeMetricName(s.Name) == es.metricName {
			return s.Value, nil
		}
	}
	return 0, errors.NewValueError("EarlyStopping.Call",
		fmt.Sprintf("metric %q disappeared from evaluation results", es.metricName))
}

// recoverBest loads a previously persisted best record, enabling
// resume-from-checkpoint semantics. It reports whether anything was found.
func (es *EarlyStopping) recoverBest(bst booster.Booster) (bool, error) {
	raw, ok := bst.Attr(booster.AttrBestScore)
	if !ok {
		return false, nil
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false, errors.Wrapf(err, "parsing persisted %s", booster.AttrBestScore)
	}
	es.best.Score = score

	if raw, ok := bst.Attr(booster.AttrBestIteration); ok {
		iter, err := strconv.Atoi(raw)
		if err != nil {
			return false, errors.Wrapf(err, "parsing persisted %s", booster.AttrBestIteration)
		}
		es.best.Iteration = iter
	}
	if raw, ok := bst.Attr(booster.AttrBestTreeLimit); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return false, errors.Wrapf(err, "parsing persisted %s", booster.AttrBestTreeLimit)
		}
		es.best.TreeLimit = limit
	}
	if msg, ok := bst.Attr(booster.AttrBestMsg); ok {
		es.best.Message = msg
	}
	return true, nil
}

// persistBest writes the full best record to the booster's attributes so an
// external checkpoint taken immediately afterwards captures the improvement.
func (es *EarlyStopping) persistBest(bst booster.Booster) error {
	attrs := map[string]string{
		booster.AttrBestScore:     formatScore(es.best.Score),
		booster.AttrBestIteration: strconv.Itoa(es.best.Iteration),
		booster.AttrBestMsg:       es.best.Message,
		booster.AttrBestTreeLimit: strconv.Itoa(es.best.TreeLimit),
	}
	if err := bst.SetAttrs(attrs); err != nil {
		return errors.Wrap(err, "persisting early-stopping state")
	}
	return nil
}

// Finalize implements Finalizer. It reconciles the internal best score with
// the externally persisted value and writes the outcome onto the result
// object: the booster handle for plain training, the basket for
// cross-validation.
func (es *EarlyStopping) Finalize(env *Env) error {
	if es.state == StateUninitialized {
		return nil
	}

	if env.Booster != nil {
		raw, ok := env.Booster.Attr(booster.AttrBestScore)
		if !ok {
			return errors.NewValueError("EarlyStopping.Finalize",
				"persisted best score attribute is missing")
		}
		external, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Wrapf(err, "parsing persisted %s", booster.AttrBestScore)
		}
		if math.Abs(external-es.best.Score) > es.tolerance {
			return errors.NewConsistencyError("EarlyStopping.Finalize",
				es.best.Score, external, es.tolerance)
		}
		// Divergence under the tolerance is floating-point truncation from
		// the attribute round-trip; the persisted value wins.
		es.best.Score = external

		if rec, ok := env.Booster.(booster.BestRecorder); ok {
			rec.RecordBest(es.best)
		}
		return nil
	}

	if env.Basket != nil {
		env.Basket.BestIteration = es.best.Iteration
		env.Basket.BestTreeLimit = es.best.TreeLimit
		env.Basket.BestScore = es.best.Score
	}
	return nil
}

// parallelTrees returns the trees-per-iteration count, defaulting to one.
func parallelTrees(env *Env) int {
	if env.NumParallelTree > 0 {
		return env.NumParallelTree
	}
	return 1
}

// inferMaximize reports whether the metric belongs to a known
// higher-is-better family. CV mean suffixes are stripped before matching.
func inferMaximize(metricName string) bool {
	name := strings.ToLower(metricName)
	name = strings.TrimSuffix(name, "_mean")
	for _, fam := range maximizeMetricFamilies {
		if strings.HasSuffix(name, fam) || strings.Contains(name, fam+"@") {
			return true
		}
	}
	return false
}

// formatScore renders a score for attribute storage with enough digits to
// round-trip.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}
