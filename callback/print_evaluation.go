package callback

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rwbrown002/xgboost/pkg/errors"
)

// PrintEvaluation prints the current evaluation results during training.
//
// A line is emitted at the first iteration, the last iteration, and every
// iteration satisfying (iteration-1) mod period == 0. Nothing prints when
// the period is 0, there are no evaluation results, or this worker is not
// the primary rank.
type PrintEvaluation struct {
	period int
	out    io.Writer
}

// NewPrintEvaluation creates a print callback with the given period.
func NewPrintEvaluation(period int) *PrintEvaluation {
	return &PrintEvaluation{
		period: period,
		out:    os.Stdout,
	}
}

// SetWriter redirects output, primarily for tests.
func (p *PrintEvaluation) SetWriter(w io.Writer) {
	p.out = w
}

// Name implements Callback.
func (p *PrintEvaluation) Name() string {
	return NamePrintEvaluation
}

// Call implements Callback.
func (p *PrintEvaluation) Call(env *Env) error {
	if len(env.Scores) == 0 || p.period == 0 || !env.IsPrimary() {
		return nil
	}

	i := env.Iteration
	show := i == env.BeginIteration || i == env.EndIteration || (i-1)%p.period == 0
	if !show {
		return nil
	}

	line, err := formatEvalLine(i, env.Scores, env.HasStd)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, line)
	return nil
}

// formatEvalLine renders one iteration's results as
// "[<iter>]\t<metric>:<value>[+<stdev>]\t...". Every metric must be named.
func formatEvalLine(iteration int, scores []EvalScore, hasStd bool) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d]", iteration)
	for _, s := range scores {
		if s.Name == "" {
			return "", errors.NewValueError("formatEvalLine", "evaluation metric without a name")
		}
		if hasStd {
			fmt.Fprintf(&sb, "\t%s:%.6f+%.6f", s.Name, s.Value, s.Std)
		} else {
			fmt.Fprintf(&sb, "\t%s:%.6f", s.Name, s.Value)
		}
	}
	return sb.String(), nil
}
