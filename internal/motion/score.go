package motion

// score computes one motion score per frame in raw, a flat buffer of
// FrameSize-byte grayscale frames. score[0] is always 0 (there is no
// preceding frame to diff against); for i >= 1, score[i] is the mean
// absolute pixel difference between frame i and frame i-1, normalized
// to [0,1]. The returned slice has length floor(len(raw)/FrameSize).
//
// This is a pure function: no I/O, no mutation of raw.
func score(raw []byte) []float64 {
	n := len(raw) / FrameSize
	if n == 0 {
		return []float64{}
	}

	scores := make([]float64, n)
	for i := 1; i < n; i++ {
		prev := raw[(i-1)*FrameSize : i*FrameSize]
		cur := raw[i*FrameSize : (i+1)*FrameSize]

		var sum int64
		for j := 0; j < FrameSize; j++ {
			d := int(cur[j]) - int(prev[j])
			if d < 0 {
				d = -d
			}
			sum += int64(d)
		}
		scores[i] = float64(sum) / float64(FrameSize) / 255.0
	}
	return scores
}
