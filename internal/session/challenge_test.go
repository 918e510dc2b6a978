package session

import (
	"testing"
	"time"
)

func TestChallengeRun_ElapsedSecondsRounds(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := StartChallenge(3, start)

	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{400 * time.Millisecond, 0},
		{500 * time.Millisecond, 1},
		{42*time.Second + 700*time.Millisecond, 43},
		{2 * time.Minute, 120},
	}
	for _, tc := range cases {
		if got := run.ElapsedSeconds(start.Add(tc.elapsed)); got != tc.want {
			t.Errorf("ElapsedSeconds(%v) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestChallengeRun_SubmitExactlyOnce(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := StartChallenge(3, start)

	if !run.ClaimSubmit(start.Add(90 * time.Second)) {
		t.Fatal("first ClaimSubmit should succeed")
	}
	if run.ClaimSubmit(start.Add(95 * time.Second)) {
		t.Error("second ClaimSubmit must be refused")
	}
	if !run.Submitted() {
		t.Error("Submitted should report true after the claim")
	}
	// the clock freezes at the claimed time
	if got := run.ElapsedSeconds(start.Add(time.Hour)); got != 90 {
		t.Errorf("ElapsedSeconds after claim = %d, want 90", got)
	}
}

func TestChallengeRun_AbortReopensSubmit(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := StartChallenge(3, start)

	if !run.ClaimSubmit(start.Add(40 * time.Second)) {
		t.Fatal("first ClaimSubmit should succeed")
	}
	run.AbortSubmit()
	if run.Submitted() {
		t.Error("Submitted should report false after AbortSubmit")
	}

	// a retry wins the claim again but keeps the original finish time
	if !run.ClaimSubmit(start.Add(5 * time.Minute)) {
		t.Fatal("ClaimSubmit after AbortSubmit should succeed")
	}
	if got := run.ElapsedSeconds(start.Add(time.Hour)); got != 40 {
		t.Errorf("ElapsedSeconds after retry = %d, want 40", got)
	}
	if run.ClaimSubmit(start.Add(6 * time.Minute)) {
		t.Error("ClaimSubmit while claimed must be refused")
	}
}
