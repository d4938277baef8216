package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"mathsense-service/internal/app"
	"mathsense-service/internal/domain"
)

// WSHandler runs timed quiz and daily-challenge sessions over a
// websocket, one session per connection.
type WSHandler struct {
	source     app.Fetcher
	reporter   app.Reporter
	challenges *app.DailyChallengeService
	results    app.ChallengeResultStore
	quizOpts   app.SessionOptions
	upgrader   websocket.Upgrader
}

func NewWSHandler(source app.Fetcher, reporter app.Reporter, challenges *app.DailyChallengeService, results app.ChallengeResultStore, quizOpts app.SessionOptions) *WSHandler {
	return &WSHandler{
		source:     source,
		reporter:   reporter,
		challenges: challenges,
		results:    results,
		quizOpts:   quizOpts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Difficulty   domain.Difficulty `json:"difficulty"`
	Courses      []string          `json:"courses"`
	UseGenerated bool              `json:"useGenerated"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionPayload is the client view of a question: never the answer.
type questionPayload struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Course     string            `json:"course,omitempty"`
	Question   string            `json:"question"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
}

type answerResultPayload struct {
	Correct       bool   `json:"correct"`
	Score         int    `json:"score"`
	Completed     bool   `json:"completed"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// ServeWS upgrades the request and drives one session until the client
// disconnects. Query params: userId (optional, attribution only) and
// mode ("quiz" or "challenge").
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "quiz"
	}
	if mode != "quiz" && mode != "challenge" {
		http.Error(w, "mode must be quiz or challenge", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var session *app.Session
	var challenge domain.DailyChallenge
	if mode == "challenge" {
		session, challenge, err = h.challenges.NewSession(r.Context(), h.results, userID)
		if err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
	} else {
		session = app.NewSession(h.source, h.reporter, userID, h.quizOpts)
	}
	// Cancel any running countdown when the client goes away.
	defer func() { _ = session.Reset() }()

	events, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: string(event.Type), Payload: event.Snapshot}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			cfg, err := h.startConfig(mode, challenge, inbound.Payload)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			snapshot, err := session.Start(r.Context(), cfg)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "started", Payload: snapshot}
			h.sendCurrent(session, send)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, err := session.SubmitAnswer(r.Context(), payload.Answer)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			out := answerResultPayload{
				Correct:   result.Correct,
				Score:     result.Score,
				Completed: result.Completed,
			}
			if result.Completed {
				out.CorrectAnswer = result.CorrectAnswer
				out.Explanation = result.Explanation
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: out}
			if !result.Completed {
				h.sendCurrent(session, send)
			}
		case "complete":
			if err := session.Complete(r.Context()); err != nil {
				send <- errorMessage(err)
			}
		case "reset":
			if err := session.Reset(); err != nil {
				send <- errorMessage(err)
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

// startConfig builds the session config for a start request. Challenge
// sessions are pinned to the fixed daily question, so client-selected
// filters are ignored there.
func (h *WSHandler) startConfig(mode string, challenge domain.DailyChallenge, raw json.RawMessage) (domain.SessionConfig, error) {
	if mode == "challenge" {
		course := challenge.Question.Course
		if course == "" {
			course = "Daily Challenge"
		}
		return domain.SessionConfig{
			Difficulty: domain.DifficultyExpert,
			Courses:    []string{course},
		}, nil
	}
	var payload startPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return domain.SessionConfig{}, err
		}
	}
	return domain.SessionConfig{
		Difficulty:   payload.Difficulty,
		Courses:      payload.Courses,
		UseGenerated: payload.UseGenerated,
	}, nil
}

func (h *WSHandler) sendCurrent(session *app.Session, send chan<- outboundMessage[any]) {
	question, ok := session.Current()
	if !ok {
		return
	}
	snapshot := session.Snapshot()
	send <- outboundMessage[any]{Type: "question", Payload: questionPayload{
		ID:         question.ID,
		Category:   question.Category,
		Difficulty: question.Difficulty,
		Course:     question.Course,
		Question:   question.Prompt,
		Index:      snapshot.CurrentIndex,
		Total:      snapshot.TotalQuestions,
	}}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}
