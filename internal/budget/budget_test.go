package budget

import "testing"

func TestEstimateTokensFromChars(t *testing.T) {
	cases := []struct {
		chars int
		want  int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{4, 1},
		{5, 2},
		{400, 100},
	}
	for _, c := range cases {
		if got := EstimateTokensFromChars(c.chars); got != c.want {
			t.Fatalf("EstimateTokensFromChars(%d) = %d, want %d", c.chars, got, c.want)
		}
	}
}

func TestHeadroom_Floor(t *testing.T) {
	if got := Headroom(1024); got != 64 {
		t.Fatalf("expected 64 token floor for 1024 context, got %d", got)
	}
	if got := Headroom(4096); got != 205 {
		t.Fatalf("expected 5%% headroom for 4096 context, got %d", got)
	}
}

func TestSourceCharBudget(t *testing.T) {
	got := SourceCharBudget(1024, 400, 200)
	// 1024 - 64 headroom - 200 output - 100 instruction tokens = 660 tokens.
	if got != 660*4 {
		t.Fatalf("unexpected char budget: %d", got)
	}
	if got := SourceCharBudget(256, 4000, 200); got != 0 {
		t.Fatalf("expected zero budget when nothing remains, got %d", got)
	}
}

func TestFits(t *testing.T) {
	if !Fits(4096, 200, 1000) {
		t.Fatalf("expected prompt to fit")
	}
	if Fits(1024, 200, 1000) {
		t.Fatalf("expected prompt not to fit")
	}
}
