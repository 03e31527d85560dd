package callback

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/rwbrown002/xgboost/pkg/errors"
)

// CoefHistory records a snapshot of the linear model's coefficient vector at
// every iteration and reshapes the snapshots into one matrix per model at
// finalize: rows are iterations, columns follow the model dump order.
//
// In cross-validation mode one matrix per fold is produced. The backing
// representation is a dense gonum matrix by default, or a compressed sparse
// row matrix when the callback is constructed sparse; both satisfy
// mat.Matrix with the same logical shape.
type CoefHistory struct {
	sparse bool

	single   [][]float64   // one snapshot per iteration
	perFold  [][][]float64 // perFold[f] holds fold f's snapshots
	matrices []mat.Matrix
}

// NewCoefHistory creates a coefficient history tracker.
func NewCoefHistory(sparse bool) *CoefHistory {
	return &CoefHistory{sparse: sparse}
}

// Name implements Callback.
func (ch *CoefHistory) Name() string {
	return NameCoefHistory
}

// Call implements Callback.
func (ch *CoefHistory) Call(env *Env) error {
	switch {
	case env.Booster != nil:
		coefs, err := dumpCoefficients(env.Booster.DumpModel())
		if err != nil {
			return err
		}
		ch.single = append(ch.single, coefs)

	case len(env.Folds) > 0:
		if ch.perFold == nil {
			ch.perFold = make([][][]float64, len(env.Folds))
		}
		for i, fold := range env.Folds {
			coefs, err := dumpCoefficients(fold.Booster.DumpModel())
			if err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			ch.perFold[i] = append(ch.perFold[i], coefs)
		}

	default:
		return errors.NewValueError("CoefHistory.Call", "no booster found in training context")
	}
	return nil
}

// Finalize implements Finalizer. It reshapes the accumulated snapshots into
// one matrix per model or fold.
func (ch *CoefHistory) Finalize(_ *Env) error {
	if ch.single != nil {
		m, err := ch.reshape(ch.single)
		if err != nil {
			return err
		}
		ch.matrices = []mat.Matrix{m}
		return nil
	}

	ch.matrices = make([]mat.Matrix, len(ch.perFold))
	for i, snapshots := range ch.perFold {
		m, err := ch.reshape(snapshots)
		if err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		ch.matrices[i] = m
	}
	return nil
}

// Matrices returns the reshaped coefficient history: one matrix for a single
// model, one per fold for cross-validation. Nil before finalize.
func (ch *CoefHistory) Matrices() []mat.Matrix {
	return ch.matrices
}

func (ch *CoefHistory) reshape(snapshots [][]float64) (mat.Matrix, error) {
	if len(snapshots) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	cols := len(snapshots[0])
	for i, snap := range snapshots {
		if len(snap) != cols {
			return nil, errors.NewValueError("CoefHistory.Finalize",
				"coefficient vector length changed at iteration "+strconv.Itoa(i+1))
		}
	}

	if ch.sparse {
		return newCSRFromRows(snapshots, cols), nil
	}
	dense := mat.NewDense(len(snapshots), cols, nil)
	for i, snap := range snapshots {
		dense.SetRow(i, snap)
	}
	return dense, nil
}

// LookupCoefHistory finds the coefficient-history callback in a finished
// run's callback list.
func LookupCoefHistory(callbacks []Callback) (*CoefHistory, bool) {
	for _, cb := range callbacks {
		if cb != nil && cb.Name() == NameCoefHistory {
			if ch, ok := cb.(*CoefHistory); ok {
				return ch, true
			}
		}
	}
	return nil, false
}

// ClassCoef slices one class's columns out of a multi-class coefficient
// matrix. Columns are laid out feature-major with a stride of numClass, so
// class c owns columns c, c+numClass, c+2*numClass, ... featuresPerClass is
// the per-class feature count.
func ClassCoef(m mat.Matrix, classIndex, numClass, featuresPerClass int) (*mat.Dense, error) {
	if m == nil {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if numClass < 1 || classIndex < 0 || classIndex >= numClass {
		return nil, errors.NewValidationError("class_index",
			"must be in [0, num_class)", classIndex)
	}
	rows, cols := m.Dims()
	if need := classIndex + (featuresPerClass-1)*numClass; featuresPerClass < 1 || need >= cols {
		return nil, errors.NewValidationError("features_per_class",
			"class columns exceed the matrix width", featuresPerClass)
	}

	out := mat.NewDense(rows, featuresPerClass, nil)
	for i := 0; i < rows; i++ {
		for k := 0; k < featuresPerClass; k++ {
			out.Set(i, k, m.At(i, classIndex+k*numClass))
		}
	}
	return out, nil
}

// dumpCoefficients extracts the flat coefficient vector from a model's
// textual dump, discarding section headers such as "bias:", "weight:", and
// "booster[...]" lines.
func dumpCoefficients(lines []string, err error) ([]float64, error) {
	if err != nil {
		return nil, errors.Wrap(err, "dumping model")
	}

	var coefs []float64
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasSuffix(trimmed, ":") || strings.HasPrefix(trimmed, "booster[") {
			continue
		}
		v, perr := strconv.ParseFloat(trimmed, 64)
		if perr != nil {
			// Non-numeric dump line, not a coefficient.
			continue
		}
		coefs = append(coefs, v)
	}
	if len(coefs) == 0 {
		return nil, errors.NewValueError("CoefHistory.Call", "model dump contains no coefficients")
	}
	return coefs, nil
}

// csrMatrix is a compressed sparse row matrix. It backs the sparse variant
// of the coefficient history while still satisfying mat.Matrix, so callers
// slice and inspect it exactly like the dense variant.
type csrMatrix struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	values     []float64
}

func newCSRFromRows(rows [][]float64, cols int) *csrMatrix {
	m := &csrMatrix{
		rows:   len(rows),
		cols:   cols,
		rowPtr: make([]int, len(rows)+1),
	}
	for i, row := range rows {
		for j, v := range row {
			if v != 0 {
				m.colIdx = append(m.colIdx, j)
				m.values = append(m.values, v)
			}
		}
		m.rowPtr[i+1] = len(m.values)
	}
	return m
}

// Dims implements mat.Matrix.
func (m *csrMatrix) Dims() (int, int) {
	return m.rows, m.cols
}

// At implements mat.Matrix.
func (m *csrMatrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	row := m.colIdx[lo:hi]
	k := sort.SearchInts(row, j)
	if k < len(row) && row[k] == j {
		return m.values[lo+k]
	}
	return 0
}

// T implements mat.Matrix.
func (m *csrMatrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}
