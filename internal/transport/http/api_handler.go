package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mathsense-service/internal/app"
	"mathsense-service/internal/domain"
)

// PracticeStore exposes the question catalog for practice browsing.
// Practice payloads include answers and explanations.
type PracticeStore interface {
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]domain.Question, error)
}

// APIHandler serves the read-mostly JSON endpoints: practice catalog,
// leaderboard, profile, daily challenge, preferences.
type APIHandler struct {
	practice    PracticeStore
	leaderboard *app.LeaderboardService
	prefs       *app.Preferences
	challenges  *app.DailyChallengeService
}

func NewAPIHandler(practice PracticeStore, leaderboard *app.LeaderboardService, prefs *app.Preferences, challenges *app.DailyChallengeService) *APIHandler {
	return &APIHandler{
		practice:    practice,
		leaderboard: leaderboard,
		prefs:       prefs,
		challenges:  challenges,
	}
}

// Register mounts every endpoint on the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/practice/categories", h.handleCategories)
	mux.HandleFunc("/api/practice/questions", h.handlePracticeQuestions)
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/api/profile", h.handleProfile)
	mux.HandleFunc("/api/daily", h.handleDaily)
	mux.HandleFunc("/api/preferences", h.handlePreferences)
}

func (h *APIHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	categories, err := h.practice.Categories(r.Context())
	if err != nil {
		log.Printf("list categories failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *APIHandler) handlePracticeQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	questions, err := h.practice.ByCategory(r.Context(), category)
	if err != nil {
		log.Printf("list practice questions failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *APIHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	timeframe := domain.Timeframe(r.URL.Query().Get("timeframe"))
	lb, err := h.leaderboard.Top(r.Context(), timeframe)
	if err != nil {
		log.Printf("leaderboard lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *APIHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	user, err := h.prefs.Get(r.Context(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("profile lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleDaily returns today's challenge prompt and its shared stats.
// The correct answer never leaves the server here; it is revealed only
// through a completed session.
func (h *APIHandler) handleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	challenge, err := h.challenges.Today(r.Context())
	if err != nil {
		log.Printf("daily challenge lookup failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "daily challenge unavailable")
		return
	}
	stats, err := h.challenges.Stats(r.Context())
	if err != nil {
		log.Printf("daily challenge stats lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load challenge stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"challenge": questionPayload{
			ID:         challenge.Question.ID,
			Category:   challenge.Question.Category,
			Difficulty: challenge.Question.Difficulty,
			Course:     challenge.Question.Course,
			Question:   challenge.Question.Prompt,
			Total:      1,
		},
		"date":      challenge.Date,
		"timeLimit": challenge.TimeLimit,
		"stats":     stats,
	})
}

func (h *APIHandler) handlePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		UserID   string `json:"userId"`
		DarkMode bool   `json:"darkMode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if err := h.prefs.SetDarkMode(r.Context(), payload.UserID, payload.DarkMode); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("preference update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}
	writeJSON(w, http.StatusOK, app.PreferenceChange{UserID: payload.UserID, DarkMode: payload.DarkMode})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
