package session

import "time"

// ChallengeRun augments a lesson session entered in challenge mode. It
// captures the wall-clock start and guarantees this participant's time is
// submitted at most once; the server owns everything else about the
// challenge (opponent time, winner, status).
type ChallengeRun struct {
	ChallengeID int
	StartedAt   time.Time

	submitted  bool
	finishedAt time.Time
}

// StartChallenge begins timing a challenge attempt.
func StartChallenge(challengeID int, now time.Time) *ChallengeRun {
	return &ChallengeRun{ChallengeID: challengeID, StartedAt: now}
}

// ElapsedSeconds returns the attempt's elapsed wall-clock time, rounded to
// whole seconds, as submitted to the server. Once a submission has been
// claimed the clock freezes at the first claimed time, even across retries.
func (c *ChallengeRun) ElapsedSeconds(now time.Time) int {
	if !c.finishedAt.IsZero() {
		now = c.finishedAt
	}
	return int(now.Sub(c.StartedAt).Round(time.Second) / time.Second)
}

// ClaimSubmit marks the result as in flight and freezes the clock. It
// returns true at most once per attempt unless AbortSubmit reopens it, so
// a result can never be in flight twice at the same time. The finish time
// is recorded on the first claim only; a retry resubmits the same elapsed
// time.
func (c *ChallengeRun) ClaimSubmit(now time.Time) bool {
	if c.submitted {
		return false
	}
	c.submitted = true
	if c.finishedAt.IsZero() {
		c.finishedAt = now
	}
	return true
}

// AbortSubmit releases the claim after a failed submission so the result
// can be sent again. The frozen finish time is kept.
func (c *ChallengeRun) AbortSubmit() {
	c.submitted = false
}

// Submitted reports whether the result has been claimed for submission.
func (c *ChallengeRun) Submitted() bool {
	return c.submitted
}
