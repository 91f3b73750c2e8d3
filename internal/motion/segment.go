package motion

import "sort"

// segment turns a smoothed per-sample motion score series into merged,
// padded time ranges. scores[i] is sampled at time i/fps. duration is
// the source video's total duration in seconds, taken from the probe
// rather than recomputed from len(scores)/fps, since the sampled frame
// count and the true duration can diverge slightly by rounding.
//
// Algorithm, in order:
//  1. threshold each score into active/inactive (v >= threshold)
//  2. collapse consecutive active samples into raw runs; a run that
//     reaches the end of the series extends to duration rather than to
//     its last sample's time, even though that is asymmetric with how
//     inner runs end
//  3. drop runs shorter than minSegmentLength
//  4. pad each surviving run by preRoll/postRoll, clamped to [0, duration]
//  5. merge any runs that now overlap or touch
//
// This is a pure function: no I/O.
func segment(scores []float64, fps float64, duration float64, opts Options) []TimeRange {
	if len(scores) == 0 || fps <= 0 {
		return nil
	}

	var raw []TimeRange
	active := false
	var start int
	for i, s := range scores {
		isActive := s >= opts.Threshold
		if isActive && !active {
			active = true
			start = i
		} else if !isActive && active {
			active = false
			raw = append(raw, TimeRange{Start: float64(start) / fps, End: float64(i) / fps})
		}
	}
	if active {
		raw = append(raw, TimeRange{Start: float64(start) / fps, End: duration})
	}

	var kept []TimeRange
	for _, r := range raw {
		if r.End-r.Start >= opts.MinSegmentLength {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	padded := make([]TimeRange, len(kept))
	for i, r := range kept {
		s := r.Start - opts.PreRoll
		if s < 0 {
			s = 0
		}
		e := r.End + opts.PostRoll
		if e > duration {
			e = duration
		}
		padded[i] = TimeRange{Start: s, End: e}
	}

	return mergeRanges(padded)
}

// mergeRanges sorts ranges by start and merges any that overlap or touch.
func mergeRanges(ranges []TimeRange) []TimeRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
