package trend

import (
	"errors"
	"fmt"
	"math"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/score"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ordinal of 1970-01-01, day 1 being 0001-01-01
const unixEpochOrdinal = 719163

var ErrNotEnoughPoints = errors.New("not enough points to fit")

// Fit is a fitted model evaluated at the input points.
type Fit struct {
	Name string `json:"name"`
	// Coefficients in increasing power order, for x as passed to the fit
	Coefficients []float64 `json:"coefficients"`
	Fitted       []float64 `json:"fitted"`
	R2           float64   `json:"r2"`
}

type Analysis struct {
	Dates      []string  `json:"dates"`
	Ordinals   []float64 `json:"ordinals"`
	Scores     []float64 `json:"scores"`
	Linear     *Fit      `json:"linear,omitempty"`
	Polynomial *Fit      `json:"polynomial,omitempty"`
}

// Ordinal returns the proleptic Gregorian ordinal of the day.
func Ordinal(day history.DayTotal) float64 {
	return float64(day.Date.Unix()/86400 + unixEpochOrdinal)
}

// Linear fits y = a + b*x by ordinary least squares.
func Linear(xs, ys []float64) (*Fit, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("linear fit: %d x values, %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("linear fit: %w", ErrNotEnoughPoints)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	fitted := make([]float64, len(xs))
	for i, x := range xs {
		fitted[i] = alpha + beta*x
	}

	return &Fit{
		Name:         "linear",
		Coefficients: []float64{alpha, beta},
		Fitted:       fitted,
		R2:           rSquared(ys, fitted),
	}, nil
}

// Polynomial fits a polynomial of the given degree by least squares.
// x is scaled to [0, 1] before fitting, the coefficients refer to the scaled x.
func Polynomial(xs, ys []float64, degree int) (*Fit, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("polynomial fit: %d x values, %d y values", len(xs), len(ys))
	}
	if degree < 1 {
		return nil, fmt.Errorf("polynomial fit: invalid degree %d", degree)
	}
	if len(xs) <= degree {
		return nil, fmt.Errorf("polynomial fit of degree %d over %d points: %w", degree, len(xs), ErrNotEnoughPoints)
	}

	scaled := scale(xs)
	a := mat.NewDense(len(xs), degree+1, nil)
	for i, x := range scaled {
		for p := 0; p <= degree; p++ {
			a.Set(i, p, math.Pow(x, float64(p)))
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(a, mat.NewVecDense(len(ys), append([]float64(nil), ys...))); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("polynomial fit: %w", err)
		}
		log.Warnf("polynomial fit: ill-conditioned system (%s)", err)
	}

	coefficients := make([]float64, degree+1)
	for p := range coefficients {
		coefficients[p] = coef.AtVec(p)
	}

	fitted := make([]float64, len(xs))
	for i, x := range scaled {
		fitted[i] = evaluate(coefficients, x)
	}

	return &Fit{
		Name:         fmt.Sprintf("polynomial (degree %d)", degree),
		Coefficients: coefficients,
		Fitted:       fitted,
		R2:           rSquared(ys, fitted),
	}, nil
}

// Analyze fits both models to the days, oldest first. The polynomial fit is
// left out while there are too few days for its degree.
func Analyze(days []history.DayTotal, degree int) (*Analysis, error) {
	a := &Analysis{
		Dates:    make([]string, len(days)),
		Ordinals: make([]float64, len(days)),
		Scores:   make([]float64, len(days)),
	}
	for i, d := range days {
		a.Dates[i] = history.FormatDay(d.Date)
		a.Ordinals[i] = Ordinal(d)
		a.Scores[i] = d.Score
	}

	linear, err := Linear(a.Ordinals, a.Scores)
	if err != nil {
		return nil, err
	}
	a.Linear = linear

	poly, err := Polynomial(a.Ordinals, a.Scores, degree)
	switch {
	case errors.Is(err, ErrNotEnoughPoints):
		log.Debugf("trend: %s", err)
	case err != nil:
		return nil, err
	default:
		a.Polynomial = poly
	}

	return a, nil
}

func scale(xs []float64) []float64 {
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	out := make([]float64, len(xs))
	if hi == lo {
		return out
	}
	for i, x := range xs {
		out[i] = (x - lo) / (hi - lo)
	}
	return out
}

func evaluate(coefficients []float64, x float64) float64 {
	var y float64
	for p := len(coefficients) - 1; p >= 0; p-- {
		y = y*x + coefficients[p]
	}
	return y
}

// rSquared is 1 for a perfect fit of constant data and 0 for any other fit of it.
func rSquared(ys, fitted []float64) float64 {
	if stat.Variance(ys, nil) == 0 {
		for i := range ys {
			if math.Abs(ys[i]-fitted[i]) > 1e-9 {
				return 0
			}
		}
		return 1
	}
	return score.Round(stat.RSquaredFrom(fitted, ys, nil), 6)
}
