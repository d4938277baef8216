package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mathsense-service/internal/app"
	"mathsense-service/internal/domain"
	"mathsense-service/internal/infra/memory"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			Category:      "Mental Math",
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "What is 15 × 12?",
			CorrectAnswer: "180",
			Explanation:   "(15 × 10) + (15 × 2) = 180",
			Course:        "Algebra 1",
		},
	}
}

type fixedGenerator struct {
	question domain.Question
}

func (g fixedGenerator) Generate(context.Context, int, domain.Difficulty, []string) ([]domain.Question, error) {
	return []domain.Question{g.question}, nil
}

func TestWebSocketQuizFlow(t *testing.T) {
	source := app.NewQuestionSource(nil, memory.NewQuestionStore(sampleQuestions()))
	attempts := memory.NewAttemptStore()
	wsHandler := NewWSHandler(source, app.NewAttemptReporter(attempts), nil, nil, app.SessionOptions{})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	start := map[string]any{
		"type": "start",
		"payload": map[string]any{
			"difficulty": "easy",
			"courses":    []string{"Algebra 1"},
		},
	}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start: %v", err)
	}

	_, started := readNext(conn, t, "started")
	if started["phase"] != "active" {
		t.Fatalf("expected active phase, got %v", started["phase"])
	}
	if started["timeRemaining"] != float64(60) {
		t.Fatalf("expected 60 second countdown, got %v", started["timeRemaining"])
	}

	_, question := readNext(conn, t, "question")
	if question["question"] != "What is 15 × 12?" {
		t.Fatalf("unexpected question payload %v", question)
	}
	if _, leaked := question["correct_answer"]; leaked {
		t.Fatalf("question payload must not carry the answer")
	}

	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"answer": " 180 "},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	_, result := readNext(conn, t, "answerResult")
	if result["correct"] != true || result["completed"] != true {
		t.Fatalf("expected correct completion, got %v", result)
	}
	if result["correctAnswer"] != "180" {
		t.Fatalf("expected answer revealed on completion, got %v", result)
	}

	recorded := attempts.Attempts()
	if len(recorded) != 1 || recorded[0].UserID != "u1" || recorded[0].CorrectAnswers != 1 {
		t.Fatalf("unexpected attempts %+v", recorded)
	}
}

func TestWebSocketStartValidationError(t *testing.T) {
	source := app.NewQuestionSource(nil, memory.NewQuestionStore(sampleQuestions()))
	wsHandler := NewWSHandler(source, nil, nil, nil, app.SessionOptions{})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	start := map[string]any{
		"type": "start",
		"payload": map[string]any{
			"difficulty": "easy",
			"courses":    []string{},
		},
	}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start: %v", err)
	}

	_, payload := readNext(conn, t, "error")
	if message, ok := payload["message"].(string); !ok || message == "" {
		t.Fatalf("expected error message, got %v", payload)
	}
}

func TestWebSocketChallengeFlow(t *testing.T) {
	challengeStore := memory.NewChallengeStore()
	generator := fixedGenerator{question: domain.Question{
		ID:            "daily-1",
		Category:      "Algebra",
		Difficulty:    domain.DifficultyExpert,
		Prompt:        "Solve x^2 - 5x + 6 = 0 for the smaller root.",
		CorrectAnswer: "2",
		Course:        "Algebra 2",
	}}
	challenges := app.NewDailyChallengeService(challengeStore, generator, 0)
	wsHandler := NewWSHandler(nil, nil, challenges, challengeStore, app.SessionOptions{})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws?mode=challenge&userId=u1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}

	_, started := readNext(conn, t, "started")
	if started["timeRemaining"] != float64(300) {
		t.Fatalf("expected 300 second countdown, got %v", started["timeRemaining"])
	}
	if started["totalQuestions"] != float64(1) {
		t.Fatalf("expected a single question, got %v", started["totalQuestions"])
	}

	readNext(conn, t, "question")

	if err := conn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"answer": "2"},
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	_, result := readNext(conn, t, "answerResult")
	if result["correct"] != true || result["completed"] != true {
		t.Fatalf("expected correct completion, got %v", result)
	}

	challenge, err := challenges.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	stats, err := challengeStore.Stats(context.Background(), challenge.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Attempts != 1 || stats.SolvedBy != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if recorded := challengeStore.ChallengeAttempts(); len(recorded) != 1 || recorded[0].UserID != "u1" {
		t.Fatalf("unexpected attempts %+v", recorded)
	}
}

func TestWebSocketRejectsUnknownMode(t *testing.T) {
	wsHandler := NewWSHandler(nil, nil, nil, nil, app.SessionOptions{})
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "?mode=arcade")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// readNext returns the next message of the expected type, skipping
// interleaved tick and completed broadcasts.
func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if expect != "" && msg.Type != expect {
			if msg.Type == "tick" || msg.Type == "completed" {
				continue
			}
			t.Fatalf("expected type %s, got %s", expect, msg.Type)
		}
		return msg.Type, msg.Payload
	}
}
