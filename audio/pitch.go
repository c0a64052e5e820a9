package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DominantHz estimates the strongest frequency in a block of converter
// words, or 0 for silence. A Hann window keeps leakage down and the peak
// bin is refined by parabolic interpolation.
func DominantHz(samples []uint16, sampleRate int) float64 {
	n := len(samples)
	if n < 4 {
		return 0
	}

	var mean float64
	for _, s := range samples {
		mean += float64(s)
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, s := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		x[i] = (float64(s) - mean) * w
	}

	X := fft.FFTReal(x)
	half := n / 2
	mag := make([]float64, half)
	best := 0
	for k := 1; k < half; k++ {
		mag[k] = cmplx.Abs(X[k])
		if mag[k] > mag[best] {
			best = k
		}
	}
	if best == 0 || mag[best] < 1e-6 {
		return 0
	}

	k := float64(best)
	if best > 1 && best < half-1 {
		a, b, c := mag[best-1], mag[best], mag[best+1]
		if d := a - 2*b + c; d != 0 {
			k += 0.5 * (a - c) / d
		}
	}
	return k * float64(sampleRate) / float64(n)
}
