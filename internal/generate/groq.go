// Package generate talks to a Groq-style chat-completions API to
// produce math questions on demand.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"mathsense-service/internal/domain"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "mixtral-8x7b-32768"
)

// Client generates question batches through the chat-completions API.
// Any transport, parse, or validation failure is reported as an error;
// the question source treats those as a fall-through signal, not fatal.
type Client struct {
	http     *resty.Client
	model    string
	validate *validator.Validate
}

// generatedQuestion is the wire shape the model is asked to produce.
// The five content fields are mandatory; course may be absent.
type generatedQuestion struct {
	Question      string `json:"question" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
	Explanation   string `json:"explanation" validate:"required"`
	Difficulty    string `json:"difficulty" validate:"required,oneof=easy medium hard expert"`
	Category      string `json:"category" validate:"required"`
	Course        string `json:"course"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient returns nil when apiKey is empty so callers can treat the
// generator as absent rather than failing every request.
func NewClient(apiKey, baseURL, model string) *Client {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &Client{
		http:     http,
		model:    model,
		validate: validator.New(),
	}
}

// Generate asks the model for count questions and validates the reply.
func (c *Client) Generate(ctx context.Context, count int, difficulty domain.Difficulty, courses []string) ([]domain.Question, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a math teacher creating questions for a quiz. Generate valid JSON containing an array of math questions.",
			},
			{
				Role:    "user",
				Content: buildPrompt(count, difficulty, courses),
			},
		},
		Temperature: 0.3,
		MaxTokens:   4096,
	}
	req.ResponseFormat.Type = "json_object"

	var reply chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&reply).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", domain.ErrGenerationFailed, resp.StatusCode())
	}
	if len(reply.Choices) == 0 || reply.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}

	var payload struct {
		Questions []generatedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(reply.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in completion: %v", domain.ErrGenerationFailed, err)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in completion", domain.ErrGenerationFailed)
	}

	questions := make([]domain.Question, 0, len(payload.Questions))
	for i, gq := range payload.Questions {
		if err := c.validate.Struct(gq); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", domain.ErrGenerationFailed, i, err)
		}
		questions = append(questions, domain.Question{
			ID:            fmt.Sprintf("generated-%d", i),
			Category:      gq.Category,
			Difficulty:    domain.Difficulty(gq.Difficulty),
			Prompt:        gq.Question,
			CorrectAnswer: gq.CorrectAnswer,
			Explanation:   gq.Explanation,
			Course:        gq.Course,
		})
	}
	return questions, nil
}

func buildPrompt(count int, difficulty domain.Difficulty, courses []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a JSON object with a 'questions' array containing %d math questions", count)
	if difficulty != "" {
		fmt.Fprintf(&b, " with %s difficulty", difficulty)
	}
	if len(courses) > 0 {
		fmt.Fprintf(&b, " from the following courses: %s", strings.Join(courses, ", "))
	}
	courseList := strings.Join(courses, ", ")
	if courseList == "" {
		courseList = strings.Join(domain.Courses, ", ")
	}
	fallbackDifficulty := difficulty
	if fallbackDifficulty == "" {
		fallbackDifficulty = domain.DifficultyEasy
	}
	fmt.Fprintf(&b, `. Each question should have these properties:
- question (string)
- correct_answer (string)
- explanation (string)
- difficulty (string: %q)
- category (string: "Mental Math", "Number Properties", "Algebra", or "Geometry")
- course (string: one of [%s])

Example format:
{
  "questions": [
    {
      "question": "What is 15 × 12?",
      "correct_answer": "180",
      "explanation": "Break it down: (15 × 10) + (15 × 2) = 150 + 30 = 180",
      "difficulty": %q,
      "category": "Mental Math",
      "course": "Algebra 1"
    }
  ]
}`, fallbackDifficulty, courseList, fallbackDifficulty)
	return b.String()
}
