package app

import (
	"context"

	"mathsense-service/internal/domain"
)

// AttemptStore persists quiz attempt summaries.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, summary domain.AttemptSummary) error
}

// ChallengeResultStore records daily challenge attempts and applies the
// shared aggregate counters. ApplyResult must be atomic at the storage
// boundary so concurrent completions cannot lose updates.
type ChallengeResultStore interface {
	RecordAttempt(ctx context.Context, attempt domain.ChallengeAttempt) error
	ApplyResult(ctx context.Context, challengeID string, correct bool, timeTaken int) error
}

// AttemptReporter writes completed quiz sessions to the attempt store.
// Anonymous sessions are not persisted.
type AttemptReporter struct {
	store AttemptStore
}

func NewAttemptReporter(store AttemptStore) *AttemptReporter {
	return &AttemptReporter{store: store}
}

func (r *AttemptReporter) Report(ctx context.Context, summary domain.AttemptSummary) error {
	if summary.UserID == "" || r.store == nil {
		return nil
	}
	return r.store.InsertAttempt(ctx, summary)
}

// ChallengeReporter records one user's daily challenge result: the
// per-user attempt row plus the shared counters (attempts, solved_by,
// best_time).
type ChallengeReporter struct {
	store       ChallengeResultStore
	challengeID string
}

func NewChallengeReporter(store ChallengeResultStore, challengeID string) *ChallengeReporter {
	return &ChallengeReporter{store: store, challengeID: challengeID}
}

func (r *ChallengeReporter) Report(ctx context.Context, summary domain.AttemptSummary) error {
	if r.store == nil {
		return nil
	}
	correct := summary.CorrectAnswers > 0
	if err := r.store.ApplyResult(ctx, r.challengeID, correct, summary.ElapsedSeconds); err != nil {
		return err
	}
	if summary.UserID == "" {
		return nil
	}
	return r.store.RecordAttempt(ctx, domain.ChallengeAttempt{
		ChallengeID: r.challengeID,
		UserID:      summary.UserID,
		TimeTaken:   summary.ElapsedSeconds,
		IsCorrect:   correct,
	})
}
