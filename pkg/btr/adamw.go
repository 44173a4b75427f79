package btr

import "math"

// adamW is a decoupled-weight-decay variant of adaptive moment estimation,
// maintained per tip cell. The weight decay is applied directly to the
// parameters before the moment update, not folded into the gradient.
type adamW struct {
	lr          float64
	weightDecay float64
	beta1       float64
	beta2       float64
	eps         float64

	step int
	m    []float64 // first moment estimates
	v    []float64 // second moment estimates
}

func newAdamW(n int, lr, weightDecay float64) *adamW {
	return &adamW{
		lr:          lr,
		weightDecay: weightDecay,
		beta1:       0.9,
		beta2:       0.999,
		eps:         1e-8,
		m:           make([]float64, n),
		v:           make([]float64, n),
	}
}

// update applies one optimizer step to params given the gradient.
func (o *adamW) update(params, grad []float64) {
	o.step++
	c1 := 1 - math.Pow(o.beta1, float64(o.step))
	c2 := 1 - math.Pow(o.beta2, float64(o.step))
	for i, g := range grad {
		params[i] -= o.lr * o.weightDecay * params[i]
		o.m[i] = o.beta1*o.m[i] + (1-o.beta1)*g
		o.v[i] = o.beta2*o.v[i] + (1-o.beta2)*g*g
		mhat := o.m[i] / c1
		vhat := o.v[i] / c2
		params[i] -= o.lr * mhat / (math.Sqrt(vhat) + o.eps)
	}
}
