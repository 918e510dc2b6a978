package api

import "github.com/skrblv/bilimGO/internal/course"

// User is the authenticated profile returned by the auth endpoint.
// CompletedLessonIDs is the server's authoritative progress set; it is
// absent (nil) from cached profiles written by older versions.
type User struct {
	ID                 int    `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Avatar             string `json:"avatar,omitempty"`
	XP                 int    `json:"xp"`
	Streak             int    `json:"streak"`
	CompletedLessonIDs []int  `json:"completed_lessons_ids,omitempty"`
}

// TokenPair is the JWT pair issued on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// CheckResult is the grading verdict for one task answer. CorrectAnswer is
// populated only on a wrong verdict, and only for task types where the
// server reveals it.
type CheckResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// CompletionResult is the server's acknowledgement of a finished lesson.
type CompletionResult struct {
	Message        string `json:"message"`
	XPEarned       int    `json:"xp_earned"`
	NewBadgesCount int    `json:"new_badges_count"`
}

// HintResult carries a purchased hint and the XP accounting message.
type HintResult struct {
	Hint struct {
		Text string `json:"text"`
	} `json:"hint"`
	Message string `json:"message"`
}

// TestDetails describes a course's final test before the user commits to
// an attempt.
type TestDetails struct {
	ID                     int    `json:"id"`
	Title                  string `json:"title"`
	Description            string `json:"description"`
	NumberOfQuestions      int    `json:"number_of_questions"`
	PassingScore           int    `json:"passing_score"`
	RequiredCorrectAnswers int    `json:"required_correct_answers"`
}

// StartTestResponse opens a test attempt. Questions arrive stripped of
// their correct answers.
type StartTestResponse struct {
	AttemptID int           `json:"attempt_id"`
	Questions []course.Task `json:"questions"`
}

// TestAnswer is one buffered answer in the submission batch.
type TestAnswer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// TestResult is the graded outcome of a submitted attempt.
type TestResult struct {
	ID       int    `json:"id"`
	Score    int    `json:"score"`
	IsPassed bool   `json:"is_passed"`
	EndTime  string `json:"end_time"`
}

// Challenge statuses as the server reports them.
const (
	ChallengePending    = "PENDING"
	ChallengeAccepted   = "ACCEPTED"
	ChallengeDeclined   = "DECLINED"
	ChallengeInProgress = "IN_PROGRESS"
	ChallengeCompleted  = "COMPLETED"
)

// ChallengeUser is the slim profile embedded in a challenge.
type ChallengeUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	XP       int    `json:"xp"`
}

// Challenge is a head-to-head race on one lesson. Times are elapsed whole
// seconds; a nil time means that side has not finished yet.
type Challenge struct {
	ID           int           `json:"id"`
	Sender       ChallengeUser `json:"sender"`
	Receiver     ChallengeUser `json:"receiver"`
	LessonID     int           `json:"lesson_id"`
	LessonTitle  string        `json:"lesson_title"`
	Status       string        `json:"status"`
	SenderTime   *int          `json:"sender_time,omitempty"`
	ReceiverTime *int          `json:"receiver_time,omitempty"`
	WinnerID     *int          `json:"winner_id,omitempty"`
	CreatedAt    string        `json:"created_at"`
}
