package sat

// EMA is an exponential moving average, used to track rolling search
// statistics (e.g. average learnt-clause LBD) for progress reporting.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay in (0, 1); higher values
// weight history more heavily than new samples.
func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

// Add folds x into the running average.
func (ema *EMA) Add(x float64) {
	if !ema.init {
		ema.init = true
		ema.value = x
	} else {
		ema.value = ema.decay*ema.value + x*(1-ema.decay)
	}
}

// Val returns the current average.
func (ema *EMA) Val() float64 {
	return ema.value
}
