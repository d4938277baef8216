package domain

import (
	"strings"
	"time"
)

// Difficulty is the ordinal tag used to filter question selection.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Valid reports whether d is one of the four known difficulty tags.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// Courses are the subject-area tags available as selection filters.
var Courses = []string{
	"Algebra 1",
	"Geometry",
	"Algebra 2",
	"Pre-Calculus",
	"Calculus",
	"Statistics",
}

// Question is a single free-answer math question. Immutable once
// fetched for a session.
type Question struct {
	ID            string     `json:"id"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	Prompt        string     `json:"question"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation,omitempty"`
	Course        string     `json:"course,omitempty"`
}

// CheckAnswer compares an answer against the question's correct answer.
// Comparison is whitespace-trimmed and case-insensitive; there is no
// numeric coercion, so "180.0" does not match "180".
func (q Question) CheckAnswer(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
}

// SessionConfig is supplied by the caller before a session starts and
// never mutated during one.
type SessionConfig struct {
	Difficulty   Difficulty `json:"difficulty"`
	Courses      []string   `json:"courses"`
	UseGenerated bool       `json:"useGenerated"`
}

// Phase tracks where a session is in its lifecycle.
type Phase int

const (
	PhaseConfiguring Phase = iota
	PhaseActive
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseConfiguring:
		return "configuring"
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// SessionSnapshot is a read-only view of session state for transports.
type SessionSnapshot struct {
	Phase          Phase      `json:"-"`
	PhaseName      string     `json:"phase"`
	CurrentIndex   int        `json:"currentIndex"`
	TotalQuestions int        `json:"totalQuestions"`
	Score          int        `json:"score"`
	TimeRemaining  int        `json:"timeRemaining"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`
	Courses        []string   `json:"courses,omitempty"`
}

// AttemptSummary is the outcome of a completed session forwarded to the
// persistence layer.
type AttemptSummary struct {
	UserID         string
	TotalQuestions int
	CorrectAnswers int
	ElapsedSeconds int
	Difficulty     Difficulty
	Courses        []string
	CompletedAt    time.Time
}

// User is the read-only identity view. The core only uses ID for
// attribution; dark mode is the one field the preferences service may
// update on the user's behalf.
type User struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	DisplayName  string  `json:"displayName,omitempty"`
	TotalSolved  int     `json:"totalSolved"`
	AccuracyRate float64 `json:"accuracyRate"`
	AverageTime  float64 `json:"averageTime"`
	DarkMode     bool    `json:"darkMode"`
}

// DailyChallenge is one day's expert question with its fixed time limit.
type DailyChallenge struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Question  Question  `json:"question"`
	TimeLimit int       `json:"timeLimit"` // seconds
	CreatedAt time.Time `json:"createdAt"`
}

// ChallengeStats are the shared aggregate counters for a daily
// challenge. BestTime is nil until someone solves it.
type ChallengeStats struct {
	ChallengeID string `json:"challengeId"`
	Attempts    int    `json:"attempts"`
	SolvedBy    int    `json:"solvedBy"`
	BestTime    *int   `json:"bestTime,omitempty"`
}

// ChallengeAttempt records one user's run at a daily challenge.
type ChallengeAttempt struct {
	ChallengeID string
	UserID      string
	TimeTaken   int
	IsCorrect   bool
}

// Timeframe selects a leaderboard window.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeAllTime Timeframe = "all_time"
)

// Valid reports whether t names a known leaderboard window.
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeDaily, TimeframeWeekly, TimeframeAllTime:
		return true
	}
	return false
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// Leaderboard is the ordered top scores for one timeframe.
type Leaderboard struct {
	Timeframe Timeframe          `json:"timeframe"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
