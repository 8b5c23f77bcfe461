package pointproc

// Homogeneous generates n spike times (ms) from a Poisson process with a
// constant rate in Hz.
//
// Each ISI is -ln(x)/rate seconds for x uniform on (0, 1), which is
// exponentially distributed with mean 1/rate. The returned times are the
// running sum of the ISIs converted to milliseconds.
func Homogeneous(src Source, n int, rate float64) ([]float64, error) {
	if err := checkCount("n", n); err != nil {
		return nil, err
	}
	if err := checkRate("rate", rate); err != nil {
		return nil, err
	}
	return SpikeTimes(exponentialISIs(uniforms(src, n), rate, 0)), nil
}
