package motion

import "testing"

func TestScoreIdenticalFramesIsZero(t *testing.T) {
	frame := make([]byte, FrameSize)
	for i := range frame {
		frame[i] = 128
	}
	raw := append(append([]byte{}, frame...), frame...)

	scores := score(raw)
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores for 2 frames, got %d", len(scores))
	}
	if scores[1] != 0 {
		t.Errorf("expected zero score for identical frames, got %f", scores[1])
	}
}

func TestScoreMaxDiffIsOne(t *testing.T) {
	black := make([]byte, FrameSize)
	white := make([]byte, FrameSize)
	for i := range white {
		white[i] = 255
	}
	raw := append(append([]byte{}, black...), white...)

	scores := score(raw)
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[1] != 1 {
		t.Errorf("expected max score of 1, got %f", scores[1])
	}
}

func TestScoreLengthMatchesFrameCount(t *testing.T) {
	raw := make([]byte, FrameSize*5)
	scores := score(raw)
	if len(scores) != 5 {
		t.Errorf("expected 5 scores for 5 frames, got %d", len(scores))
	}
}

func TestScoreFirstIsAlwaysZero(t *testing.T) {
	raw := make([]byte, FrameSize*3)
	for i := range raw {
		raw[i] = byte(i % 256)
	}
	scores := score(raw)
	if scores[0] != 0 {
		t.Errorf("expected score[0] == 0, got %f", scores[0])
	}
}

func TestScoreSingleFrameIsZero(t *testing.T) {
	got := score(make([]byte, FrameSize))
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("expected [0] for a single frame, got %v", got)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	if got := score(nil); len(got) != 0 {
		t.Errorf("expected empty scores for empty input, got %v", got)
	}
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	raw := make([]byte, FrameSize*3)
	for i := range raw {
		raw[i] = byte(i % 256)
	}
	cp := append([]byte{}, raw...)

	_ = score(raw)

	for i := range raw {
		if raw[i] != cp[i] {
			t.Fatalf("score mutated its input at index %d", i)
		}
	}
}
