package callback

import (
	"gonum.org/v1/gonum/mat"

	"github.com/rwbrown002/xgboost/booster"
)

// stubBooster is an in-memory booster handle for callback tests. It records
// every attribute write, parameter push, and save so tests can assert on the
// externally visible side effects.
type stubBooster struct {
	attrs      map[string]string
	saved      []string
	paramCalls []map[string]string
	dumpLines  []string
	dumpErr    error

	predictFn func(data mat.Matrix, r booster.IterationRange, reshape bool) (*mat.Dense, error)
	lastRange booster.IterationRange

	recorded *booster.Best
	saveErr  error
}

func newStubBooster() *stubBooster {
	return &stubBooster{attrs: make(map[string]string)}
}

func (s *stubBooster) Predict(data mat.Matrix, r booster.IterationRange, reshape bool) (*mat.Dense, error) {
	s.lastRange = r
	if s.predictFn != nil {
		return s.predictFn(data, r, reshape)
	}
	rows, _ := data.Dims()
	cols := 1
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, float64(i))
	}
	return out, nil
}

func (s *stubBooster) Attr(key string) (string, bool) {
	v, ok := s.attrs[key]
	return v, ok
}

func (s *stubBooster) SetAttrs(attrs map[string]string) error {
	for k, v := range attrs {
		if v == "" {
			delete(s.attrs, k)
			continue
		}
		s.attrs[k] = v
	}
	return nil
}

func (s *stubBooster) SetParams(params map[string]string) error {
	cp := make(map[string]string, len(params))
	for k, v := range params {
		cp[k] = v
	}
	s.paramCalls = append(s.paramCalls, cp)
	return nil
}

func (s *stubBooster) DumpModel() ([]string, error) {
	return s.dumpLines, s.dumpErr
}

func (s *stubBooster) SaveModel(path string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, path)
	return nil
}

func (s *stubBooster) RecordBest(best booster.Best) {
	s.recorded = &best
}

// finalizableBooster wraps a stub so CVPredict's retention path exercises the
// ModelFinalizer capability.
type finalizableBooster struct {
	*stubBooster
	finalized *stubBooster
}

func (f *finalizableBooster) FinalizeModel() (booster.Booster, error) {
	f.finalized = newStubBooster()
	f.finalized.attrs["finalized"] = "true"
	return f.finalized, nil
}

// namedCallback is a minimal callback that records its invocations, used for
// registry ordering tests.
type namedCallback struct {
	name  string
	pre   bool
	calls *[]string
}

func (n *namedCallback) Name() string { return n.name }

func (n *namedCallback) Call(_ *Env) error {
	if n.calls != nil {
		*n.calls = append(*n.calls, n.name)
	}
	return nil
}

func (n *namedCallback) RunsBeforeIteration() bool { return n.pre }

// namedFinalizer additionally participates in the finalize phase.
type namedFinalizer struct {
	namedCallback
}

func (n *namedFinalizer) Finalize(_ *Env) error {
	if n.calls != nil {
		*n.calls = append(*n.calls, n.name+":finalize")
	}
	return nil
}
