// Package recursive implements the recursive (IIR) approximation of the convolution with a Gaussian and with
// its first derivative, applied along one axis of an image.
//
// The kernel is the 4th order Deriche approximation: a causal recursion running forward along the line plus an
// anti-causal recursion running backward, both of order 4, whose sum approximates the Gaussian response at a cost
// independent of sigma. Samples outside the line take the value of the nearest end sample.
//
// Lines are filtered relative to their first sample, so a constant line comes out exact for any sigma. The poles of
// the recursion approach 1 as sigma/spacing grows, and the precision on varying lines degrades accordingly. A
// derivative whose sigma is so far below the spacing that the kernel vanishes in float64 is rejected.
package recursive

import (
	"math"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// Order selects the Gaussian (ZeroOrder) or its first derivative (FirstOrder).
type Order int

const (
	ZeroOrder Order = iota
	FirstOrder
)

func (o Order) String() string {
	switch o {
	case ZeroOrder:
		return "zero"
	case FirstOrder:
		return "first"
	default:
		return "unknown"
	}
}

// SpacingTolerance is the smallest spacing magnitude accepted.
const SpacingTolerance = 1e-8

// Deriche constants, indexed by order.
var (
	a1 = [2]float64{1.3530, -0.6724}
	b1 = [2]float64{1.8151, -3.4327}
	a2 = [2]float64{-0.3531, 0.6724}
	b2 = [2]float64{0.0902, 0.6100}
)

const (
	w1 = 0.6681
	l1 = -1.3932
	w2 = 2.0787
	l2 = -1.3732
)

// Coefficients of the causal (n, d) and anti-causal (m, d) recursions.
type Coefficients struct {
	n [4]float64
	d [5]float64
	m [5]float64

	// steady state gains of both recursions for a constant input
	causalGain     float64
	antiCausalGain float64
	// exact response to a constant line: 1 for order 0, 0 for order 1
	dcGain float64

	sigma   float64
	spacing float64
	order   Order
}

// NewCoefficients derives the recursion coefficients. sigma is expressed in physical units and spacing is the
// physical distance between two samples. Order 0 has unit DC gain. Order 1 maps a ramp of unit slope per physical
// unit to 1, or to sigma when normalizeAcrossScale is set. A negative spacing negates the derivative.
func NewCoefficients(sigma, spacing float64, order Order, normalizeAcrossScale bool) (*Coefficients, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "sigma must be a positive number, got %g", sigma)
	}

	if math.IsNaN(spacing) || math.Abs(spacing) < SpacingTolerance {
		return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "spacing %g is too small", spacing)
	}

	direction := 1.0
	if spacing < 0 {
		direction = -1
	}

	absSpacing := math.Abs(spacing)
	sigmad := sigma / absSpacing

	c := &Coefficients{sigma: sigma, spacing: spacing, order: order}
	c.computeD(sigmad)
	sd, dd := c.denominatorSums()

	switch order {
	case ZeroOrder:
		sn, _ := c.computeN(sigmad, ZeroOrder)
		alpha0 := 2*sn/sd - c.n[0]
		if alpha0 == 0 {
			return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "sigma %g too small for spacing %g", sigma, spacing)
		}

		c.scaleN(1 / alpha0)
		c.computeM(true)
		c.dcGain = 1
	case FirstOrder:
		sn, dn := c.computeN(sigmad, FirstOrder)
		alpha1 := 2 * (sn*dd - dn*sd) / (sd * sd)
		alpha1 *= direction

		if alpha1 == 0 {
			return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "sigma %g too small for spacing %g", sigma, spacing)
		}

		norm := 1.0
		if normalizeAcrossScale {
			norm = sigma
		}

		c.scaleN(norm / (alpha1 * absSpacing))
		c.computeM(false)
	default:
		return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "unsupported order %d", order)
	}

	var sn, sm float64
	for k := 0; k < 4; k++ {
		sn += c.n[k]
	}

	for k := 1; k < 5; k++ {
		sm += c.m[k]
	}

	c.causalGain = sn / sd
	c.antiCausalGain = sm / sd

	if !c.finite() {
		return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "sigma %g out of range for spacing %g", sigma, spacing)
	}

	return c, nil
}

func (c *Coefficients) finite() bool {
	values := []float64{c.causalGain, c.antiCausalGain}
	values = append(values, c.n[:]...)
	values = append(values, c.d[:]...)
	values = append(values, c.m[:]...)

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

func (c *Coefficients) computeN(sigmad float64, order Order) (sn, dn float64) {
	ca1, cb1, ca2, cb2 := a1[order], b1[order], a2[order], b2[order]

	cos1, sin1, exp1 := math.Cos(w1/sigmad), math.Sin(w1/sigmad), math.Exp(l1/sigmad)
	cos2, sin2, exp2 := math.Cos(w2/sigmad), math.Sin(w2/sigmad), math.Exp(l2/sigmad)

	c.n[0] = ca1 + ca2
	c.n[1] = exp2*(cb2*sin2-(ca2+2*ca1)*cos2) + exp1*(cb1*sin1-(ca1+2*ca2)*cos1)
	c.n[2] = 2*exp1*exp2*((ca1+ca2)*cos2*cos1-cb1*cos2*sin1-cb2*cos1*sin2) + ca2*exp1*exp1 + ca1*exp2*exp2
	c.n[3] = exp1 * exp2 * (exp2*(cb1*sin1-ca1*cos1) + exp1*(cb2*sin2-ca2*cos2))

	sn = c.n[0] + c.n[1] + c.n[2] + c.n[3]
	dn = c.n[1] + 2*c.n[2] + 3*c.n[3]

	return sn, dn
}

func (c *Coefficients) computeD(sigmad float64) {
	cos1, exp1 := math.Cos(w1/sigmad), math.Exp(l1/sigmad)
	cos2, exp2 := math.Cos(w2/sigmad), math.Exp(l2/sigmad)

	c.d[4] = exp1 * exp1 * exp2 * exp2
	c.d[3] = -2*cos1*exp1*exp2*exp2 - 2*cos2*exp2*exp1*exp1
	c.d[2] = 4*cos2*cos1*exp1*exp2 + exp1*exp1 + exp2*exp2
	c.d[1] = -2 * (exp2*cos2 + exp1*cos1)
}

func (c *Coefficients) denominatorSums() (sd, dd float64) {
	sd = 1 + c.d[1] + c.d[2] + c.d[3] + c.d[4]
	dd = c.d[1] + 2*c.d[2] + 3*c.d[3] + 4*c.d[4]

	return sd, dd
}

func (c *Coefficients) scaleN(factor float64) {
	for k := range c.n {
		c.n[k] *= factor
	}
}

// computeM mirrors the causal numerator. The impulse response is symmetric for order 0 and antisymmetric for order 1.
func (c *Coefficients) computeM(symmetric bool) {
	sign := 1.0
	if !symmetric {
		sign = -1
	}

	for k := 1; k < 4; k++ {
		c.m[k] = sign * (c.n[k] - c.d[k]*c.n[0])
	}

	c.m[4] = -sign * c.d[4] * c.n[0]
}

// Sigma returns the physical scale.
func (c *Coefficients) Sigma() float64 {
	return c.sigma
}

// Order returns the derivative order.
func (c *Coefficients) Order() Order {
	return c.order
}

// Gain returns the response of the filter to a constant line.
func (c *Coefficients) Gain() float64 {
	return c.causalGain + c.antiCausalGain
}

// FilterLine filters in into out, both of the same length, and returns scratch, grown as needed.
// out may alias in. scratch may be nil.
func (c *Coefficients) FilterLine(out, in, scratch []float64) []float64 {
	n := len(in)
	if n == 0 {
		return scratch
	}

	if cap(scratch) < 2*n {
		scratch = make([]float64, 2*n)
	}

	scratch = scratch[:2*n]
	causal, antiCausal := scratch[:n], scratch[n:]

	n0, n1, n2, n3 := c.n[0], c.n[1], c.n[2], c.n[3]
	d1, d2, d3, d4 := c.d[1], c.d[2], c.d[3], c.d[4]

	// the recursions run on in - shift, which starts at zero
	shift := in[0]

	var xm1, xm2, xm3, ym1, ym2, ym3, ym4 float64

	for i := 0; i < n; i++ {
		xi := in[i] - shift
		yi := n0*xi + n1*xm1 + n2*xm2 + n3*xm3 - d1*ym1 - d2*ym2 - d3*ym3 - d4*ym4
		causal[i] = yi

		xm3, xm2, xm1 = xm2, xm1, xi
		ym4, ym3, ym2, ym1 = ym3, ym2, ym1, yi
	}

	m1, m2, m3, m4 := c.m[1], c.m[2], c.m[3], c.m[4]

	last := in[n-1] - shift
	xp1, xp2, xp3, xp4 := last, last, last, last
	steady := last * c.antiCausalGain
	yp1, yp2, yp3, yp4 := steady, steady, steady, steady

	for i := n - 1; i >= 0; i-- {
		yi := m1*xp1 + m2*xp2 + m3*xp3 + m4*xp4 - d1*yp1 - d2*yp2 - d3*yp3 - d4*yp4
		antiCausal[i] = yi

		xp4, xp3, xp2, xp1 = xp3, xp2, xp1, in[i]-shift
		yp4, yp3, yp2, yp1 = yp3, yp2, yp1, yi
	}

	offset := shift * c.dcGain
	for i := 0; i < n; i++ {
		out[i] = causal[i] + antiCausal[i] + offset
	}

	return scratch
}
