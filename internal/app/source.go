package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"mathsense-service/internal/domain"
)

// Generator produces a batch of questions from an external
// question-generation service.
type Generator interface {
	Generate(ctx context.Context, count int, difficulty domain.Difficulty, courses []string) ([]domain.Question, error)
}

// QuestionStore reads persisted questions filtered by difficulty and
// course membership.
type QuestionStore interface {
	SelectQuestions(ctx context.Context, difficulty domain.Difficulty, courses []string) ([]domain.Question, error)
}

// QuestionSource resolves a question batch from three sources in
// priority order: generator, store, compiled-in fallback. Failures in
// an earlier source fall through to the next; only total exhaustion is
// an error. Nothing is cached across calls.
type QuestionSource struct {
	generator Generator // nil when no credential is configured
	store     QuestionStore
	fallback  []domain.Question

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionSource(generator Generator, store QuestionStore) *QuestionSource {
	return &QuestionSource{
		generator: generator,
		store:     store,
		fallback:  FallbackQuestions(),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Fetch returns up to count questions matching the difficulty and
// course filter. useGenerated toggles the generator attempt; the store
// and fallback are always tried after a miss.
func (s *QuestionSource) Fetch(ctx context.Context, count int, difficulty domain.Difficulty, courses []string, useGenerated bool) ([]domain.Question, error) {
	if useGenerated && s.generator != nil {
		questions, err := s.generator.Generate(ctx, count, difficulty, courses)
		if err != nil {
			log.Printf("question generation failed, falling back to store: %v", err)
		} else if len(questions) > 0 {
			return questions, nil
		}
	}

	if s.store != nil {
		questions, err := s.store.SelectQuestions(ctx, difficulty, courses)
		if err != nil {
			log.Printf("question store lookup failed, using fallback set: %v", err)
		} else if len(questions) > 0 {
			s.shuffle(questions)
			if len(questions) > count {
				questions = questions[:count]
			}
			return questions, nil
		}
	}

	questions := filterQuestions(s.fallback, difficulty, courses)
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if len(questions) > count {
		s.shuffle(questions)
		questions = questions[:count]
	}
	return questions, nil
}

// shuffle performs an in-place Fisher–Yates shuffle.
func (s *QuestionSource) shuffle(questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(questions) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
}

func filterQuestions(questions []domain.Question, difficulty domain.Difficulty, courses []string) []domain.Question {
	selected := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		selected[c] = struct{}{}
	}
	matched := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.Difficulty != difficulty {
			continue
		}
		if _, ok := selected[q.Course]; !ok {
			continue
		}
		matched = append(matched, q)
	}
	return matched
}
