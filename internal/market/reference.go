package market

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"housing_go/pkg/quant"
)

// Curve maps quality bands to baseline prices using a fitted log-normal
// price distribution. Band q sits at the midpoint of its probability mass.
type Curve struct {
	Bands     int
	LogMedian float64
	Shape     float64
}

// DefaultCurve is the curve of DefaultConfig.
var DefaultCurve = NewCurve(DefaultQualityBands, DefaultHPIMedian, DefaultHPIShape)

// NewCurve builds a curve from the distribution median (not log-median) and shape.
func NewCurve(bands int, median quant.Price, shape float64) Curve {
	return Curve{
		Bands:     bands,
		LogMedian: math.Log(float64(median)),
		Shape:     shape,
	}
}

// ReferencePrice is the baseline price of band q on the default curve.
func ReferencePrice(q int) quant.Price {
	return DefaultCurve.Price(q)
}

func (c Curve) distribution() distuv.LogNormal {
	return distuv.LogNormal{Mu: c.LogMedian, Sigma: c.Shape}
}

// Price returns the inverse CDF at (q+0.5)/Bands.
func (c Curve) Price(q int) quant.Price {
	p := (float64(q) + 0.5) / float64(c.Bands)
	return quant.Price(c.distribution().Quantile(p))
}

// Mean is the mean of the underlying distribution, exp(mu + sigma^2/2).
// It normalises the price index.
func (c Curve) Mean() float64 {
	return c.distribution().Mean()
}

// Prices returns the price of every band in order.
func (c Curve) Prices() []quant.Price {
	out := make([]quant.Price, c.Bands)
	for q := range out {
		out[q] = c.Price(q)
	}
	return out
}
