package predict

import (
	"fmt"
	"math"
	"sort"
)

const (
	methodSigmoid  = "sigmoid"
	methodIsotonic = "isotonic"
)

// calibration maps the model's raw output onto a calibrated probability.
// Sigmoid (Platt) operates on the raw decision margin; isotonic is a
// piecewise-linear map fitted on the raw probability.
type calibration struct {
	Method string    `json:"method"`
	A      float64   `json:"a,omitempty"`
	B      float64   `json:"b,omitempty"`
	X      []float64 `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
}

func (c *calibration) validate() error {
	switch c.Method {
	case methodSigmoid:
		return nil
	case methodIsotonic:
		if len(c.X) < 2 || len(c.X) != len(c.Y) {
			return fmt.Errorf("isotonic calibration needs matched breakpoints, got %d/%d", len(c.X), len(c.Y))
		}
		if !sort.Float64sAreSorted(c.X) {
			return fmt.Errorf("isotonic calibration breakpoints must be ascending")
		}
		return nil
	default:
		return fmt.Errorf("unknown calibration method %q", c.Method)
	}
}

// apply converts a raw margin into a calibrated class-1 probability.
func (c *calibration) apply(margin, rawProb float64) float64 {
	switch c.Method {
	case methodSigmoid:
		return 1 / (1 + math.Exp(c.A*margin+c.B))
	case methodIsotonic:
		return interpolate(c.X, c.Y, rawProb)
	default:
		return rawProb
	}
}

// interpolate evaluates the piecewise-linear map at v, clamping outside the
// fitted range.
func interpolate(xs, ys []float64, v float64) float64 {
	if v <= xs[0] {
		return ys[0]
	}
	n := len(xs)
	if v >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs, v)
	// xs[i-1] < v <= xs[i]
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	if x1 == x0 {
		return y1
	}
	return y0 + (y1-y0)*(v-x0)/(x1-x0)
}
