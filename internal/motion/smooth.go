package motion

// smooth applies a symmetric rolling average of the given window size to
// scores, returning a freshly allocated slice of the same length. window
// is clamped to the series length; a window of 1 or less returns a copy
// of scores unchanged. The input is never mutated.
//
// This is a pure function: no I/O.
func smooth(scores []float64, window int) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	if window <= 1 {
		copy(out, scores)
		return out
	}

	half := window / 2
	for i := range scores {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(scores) {
			hi = len(scores) - 1
		}

		var sum float64
		for j := lo; j <= hi; j++ {
			sum += scores[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
