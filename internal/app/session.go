package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"mathsense-service/internal/domain"
)

// Fetcher resolves the question batch for a session start.
type Fetcher interface {
	Fetch(ctx context.Context, count int, difficulty domain.Difficulty, courses []string, useGenerated bool) ([]domain.Question, error)
}

// Reporter forwards a finished session summary to persistence. Errors
// are logged and swallowed by the session; they never block results.
type Reporter interface {
	Report(ctx context.Context, summary domain.AttemptSummary) error
}

// EventType labels session events pushed to subscribers.
type EventType string

const (
	EventTick      EventType = "tick"
	EventCompleted EventType = "completed"
)

// Event is a session state change delivered to subscribers.
type Event struct {
	Type     EventType
	Snapshot domain.SessionSnapshot
}

// AnswerResult is the outcome of a single answer submission.
type AnswerResult struct {
	Correct       bool
	CorrectAnswer string
	Explanation   string
	Score         int
	Completed     bool
	Snapshot      domain.SessionSnapshot
}

// SessionOptions tune a session's countdown and batch size.
type SessionOptions struct {
	DurationSeconds int           // countdown length, default 60
	QuestionCount   int           // desired batch size, default 10
	TickInterval    time.Duration // default one second
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.DurationSeconds <= 0 {
		o.DurationSeconds = 60
	}
	if o.QuestionCount <= 0 {
		o.QuestionCount = 10
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	return o
}

// Session owns one quiz or challenge run from configuration through
// completion. All state transitions are serialized behind a mutex; the
// countdown runs in a per-activation goroutine carrying a generation
// token so a stale tick can never mutate state after the session has
// left the active phase.
type Session struct {
	source   Fetcher
	reporter Reporter
	userID   string
	opts     SessionOptions

	mu            sync.Mutex
	busy          bool
	phase         domain.Phase
	cfg           domain.SessionConfig
	questions     []domain.Question
	currentIndex  int
	score         int
	timeRemaining int
	reported      bool
	generation    int
	stop          chan struct{}
	rnd           *rand.Rand
	subscribers   map[chan Event]struct{}
}

func NewSession(source Fetcher, reporter Reporter, userID string, opts SessionOptions) *Session {
	return &Session{
		source:      source,
		reporter:    reporter,
		userID:      userID,
		opts:        opts.withDefaults(),
		phase:       domain.PhaseConfiguring,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		subscribers: make(map[chan Event]struct{}),
	}
}

// Start validates the config, fetches questions, and activates the
// countdown. Valid only while configuring; a second Start while the
// fetch is outstanding is rejected rather than queued.
func (s *Session) Start(ctx context.Context, cfg domain.SessionConfig) (domain.SessionSnapshot, error) {
	if !cfg.Difficulty.Valid() {
		return domain.SessionSnapshot{}, domain.ErrInvalidDifficulty
	}
	if len(cfg.Courses) == 0 {
		return domain.SessionSnapshot{}, domain.ErrEmptyCourses
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.SessionSnapshot{}, domain.ErrSessionBusy
	}
	if s.phase != domain.PhaseConfiguring {
		s.mu.Unlock()
		return domain.SessionSnapshot{}, domain.ErrSessionActive
	}
	s.busy = true
	s.mu.Unlock()

	questions, err := s.source.Fetch(ctx, s.opts.QuestionCount, cfg.Difficulty, cfg.Courses, cfg.UseGenerated)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		// Remain in the configuring phase; the caller may retry.
		return domain.SessionSnapshot{}, err
	}

	s.shuffleLocked(questions)
	s.cfg = cfg
	s.questions = questions
	s.currentIndex = 0
	s.score = 0
	s.timeRemaining = s.opts.DurationSeconds
	s.reported = false
	s.phase = domain.PhaseActive
	s.generation++
	s.stop = make(chan struct{})
	go s.tickLoop(s.generation, s.stop)

	return s.snapshotLocked(), nil
}

// SubmitAnswer scores the answer against the current question and
// advances the index by exactly one. Answering the final question
// completes the session even if time remains.
func (s *Session) SubmitAnswer(ctx context.Context, answer string) (AnswerResult, error) {
	s.mu.Lock()
	if s.phase != domain.PhaseActive {
		s.mu.Unlock()
		return AnswerResult{}, domain.ErrSessionNotActive
	}

	question := s.questions[s.currentIndex]
	correct := question.CheckAnswer(answer)
	if correct {
		s.score++
	}
	s.currentIndex++

	var summary domain.AttemptSummary
	report := false
	completed := s.currentIndex == len(s.questions)
	if completed {
		summary, report = s.finishLocked()
	}
	result := AnswerResult{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
		Score:         s.score,
		Completed:     completed,
		Snapshot:      s.snapshotLocked(),
	}
	s.mu.Unlock()

	if report {
		s.report(ctx, summary)
	}
	return result, nil
}

// Complete forces the session to end. Idempotent once completed; the
// reporter fires at most once per session.
func (s *Session) Complete(ctx context.Context) error {
	s.mu.Lock()
	switch s.phase {
	case domain.PhaseCompleted:
		s.mu.Unlock()
		return nil
	case domain.PhaseConfiguring:
		s.mu.Unlock()
		return domain.ErrSessionNotActive
	}
	summary, report := s.finishLocked()
	s.mu.Unlock()

	if report {
		s.report(ctx, summary)
	}
	return nil
}

// Reset discards all session state and returns to configuring. Any
// pending countdown is cancelled and can never fire again.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.PhaseConfiguring {
		return domain.ErrSessionNotActive
	}
	s.stopTimerLocked()
	s.generation++
	s.phase = domain.PhaseConfiguring
	s.questions = nil
	s.currentIndex = 0
	s.score = 0
	s.timeRemaining = 0
	s.reported = false
	return nil
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseActive || s.currentIndex >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[s.currentIndex], true
}

// Snapshot returns a read-only view of the session state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving tick and completion events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) tickLoop(generation int, stop chan struct{}) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.applyTick(generation) {
				return
			}
		}
	}
}

// applyTick decrements the countdown for the activation identified by
// generation. Returns false when the loop should stop.
func (s *Session) applyTick(generation int) bool {
	s.mu.Lock()
	if generation != s.generation || s.phase != domain.PhaseActive {
		s.mu.Unlock()
		return false
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		summary, report := s.finishLocked()
		s.mu.Unlock()
		if report {
			s.report(context.Background(), summary)
		}
		return false
	}
	s.broadcastLocked(EventTick)
	s.mu.Unlock()
	return true
}

// finishLocked transitions to completed, freezes the countdown, and
// returns the summary to report if this is the first completion.
func (s *Session) finishLocked() (domain.AttemptSummary, bool) {
	s.stopTimerLocked()
	s.phase = domain.PhaseCompleted
	s.broadcastLocked(EventCompleted)
	if s.reported {
		return domain.AttemptSummary{}, false
	}
	s.reported = true
	return domain.AttemptSummary{
		UserID:         s.userID,
		TotalQuestions: len(s.questions),
		CorrectAnswers: s.score,
		ElapsedSeconds: s.opts.DurationSeconds - s.timeRemaining,
		Difficulty:     s.cfg.Difficulty,
		Courses:        append([]string(nil), s.cfg.Courses...),
		CompletedAt:    time.Now(),
	}, true
}

func (s *Session) stopTimerLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) report(ctx context.Context, summary domain.AttemptSummary) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Report(ctx, summary); err != nil {
		log.Printf("failed to persist session result: %v", err)
	}
}

func (s *Session) broadcastLocked(eventType EventType) {
	event := Event{Type: eventType, Snapshot: s.snapshotLocked()}
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest buffered event so slow readers never block a tick.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	return domain.SessionSnapshot{
		Phase:          s.phase,
		PhaseName:      s.phase.String(),
		CurrentIndex:   s.currentIndex,
		TotalQuestions: len(s.questions),
		Score:          s.score,
		TimeRemaining:  s.timeRemaining,
		Difficulty:     s.cfg.Difficulty,
		Courses:        append([]string(nil), s.cfg.Courses...),
	}
}

// shuffleLocked fixes the question order for the session.
func (s *Session) shuffleLocked(questions []domain.Question) {
	for i := len(questions) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
}
