package lom

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum holds one-sided power spectral densities, one per channel, on a
// shared frequency axis in Hz.
type Spectrum struct {
	Frequency []float64
	Power     [][]float64
}

// PowerSpectrum estimates the one-sided power spectral density of every
// channel over the trailing window. fs is the sampling frequency in Hz and
// the densities are in Unit² per Hz. The mean is not removed.
func (s *MetricSeries) PowerSpectrum(window int, fs float64) (*Spectrum, error) {
	buf, err := s.TimeWise(window)
	if err != nil {
		return nil, err
	}
	n := len(buf) / s.Width
	fft := fourier.NewFFT(n)
	nf := n/2 + 1

	sp := &Spectrum{
		Frequency: make([]float64, nf),
		Power:     make([][]float64, s.Width),
	}
	for i := range sp.Frequency {
		sp.Frequency[i] = fft.Freq(i) * fs
	}

	coeff := make([]complex128, nf)
	norm := 1 / (fs * float64(n))
	for ch := range s.Width {
		coeff = fft.Coefficients(coeff, buf[ch*n:(ch+1)*n])
		p := make([]float64, nf)
		for i, c := range coeff {
			a := cmplx.Abs(c)
			p[i] = a * a * norm
			// Every bin but DC and Nyquist folds in its negative frequency.
			if i != 0 && !(n%2 == 0 && i == n/2) {
				p[i] *= 2
			}
		}
		sp.Power[ch] = p
	}
	return sp, nil
}
