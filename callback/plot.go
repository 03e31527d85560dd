package callback

import (
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/rwbrown002/xgboost/pkg/errors"
)

// PlotHistory renders the finalized evaluation history as learning curves,
// one line per metric column, and saves the image to path. The image format
// follows the file extension (.png, .svg, .pdf). Standard-deviation columns
// are skipped; only metric values and means are drawn.
func PlotHistory(h *History, title, path string) error {
	if h == nil || len(h.Iter) == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "metric"

	var lines []interface{}
	for _, col := range h.Columns {
		if strings.HasSuffix(col, "_std") {
			continue
		}
		series, ok := h.Values[col]
		if !ok || len(series) != len(h.Iter) {
			return errors.NewValueError("PlotHistory",
				"history column "+col+" does not match the iteration index")
		}
		pts := make(plotter.XYs, len(h.Iter))
		for i, iter := range h.Iter {
			pts[i].X = float64(iter)
			pts[i].Y = series[i]
		}
		lines = append(lines, col, pts)
	}
	if len(lines) == 0 {
		return errors.NewValueError("PlotHistory", "history has no metric columns to draw")
	}

	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "drawing learning curves")
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrap(err, "saving learning-curve plot")
	}
	return nil
}
