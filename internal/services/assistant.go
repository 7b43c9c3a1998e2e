// internal/services/assistant.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"devtogether-backend/internal/config"
	"devtogether-backend/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// AllowedTechnologies - фіксований allow-list технологій для форми проєкту.
// Значення поза списком, запропоновані моделлю, відкидаються
var AllowedTechnologies = []string{
	"JavaScript", "TypeScript", "Python", "Java", "Go", "C#", "PHP", "Ruby",
	"React", "Vue", "Angular", "Svelte", "Node.js", "Django", "Flask",
	"Spring", "Laravel", "Rails", ".NET",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Firebase",
	"Docker", "Kubernetes", "AWS", "GCP", "Azure",
	"HTML/CSS", "Tailwind", "GraphQL", "REST API", "Flutter", "React Native",
}

type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=4000"`
}

// ProjectDraft - результат фіналізації розмови, передається у форму створення проєкту
type ProjectDraft struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Requirements      string   `json:"requirements"`
	Technologies      []string `json:"technologies"`
	Difficulty        string   `json:"difficulty"`
	EstimatedDuration string   `json:"estimated_duration"`
	EnrollmentType    string   `json:"enrollment_type"`
	MaxDevelopers     int      `json:"max_developers"`
}

var (
	ErrAssistantNotConfigured = errors.New("assistant API is not configured")
	ErrDraftParse             = errors.New("assistant reply is not valid JSON")
)

// AssistantService - обгортка над зовнішнім генеративним API. Без серверного
// conversation-id: весь транскрипт пересилається при кожному ході
type AssistantService struct {
	config *config.Config
	client *resty.Client
	log    *logrus.Entry
}

type assistantRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type assistantResponse struct {
	Text string `json:"text"`
}

func NewAssistantService(cfg *config.Config) *AssistantService {
	client := resty.New().
		SetTimeout(time.Duration(cfg.AssistantTimeout)*time.Second).
		SetHeader("Content-Type", "application/json")

	return &AssistantService{
		config: cfg,
		client: client,
		log:    logrus.WithField("component", "assistant"),
	}
}

// Chat відправляє повний транскрипт та повертає текстову відповідь моделі
func (as *AssistantService) Chat(ctx context.Context, history []ChatMessage) (string, error) {
	if as.config.AssistantAPIURL == "" || as.config.AssistantAPIKey == "" {
		return "", ErrAssistantNotConfigured
	}

	prompt := buildPrompt(history)
	return as.call(ctx, prompt)
}

// Finalize просить модель видати JSON-only чернетку проєкту та приводить
// поля до фіксованих enum-значень і allow-list технологій
func (as *AssistantService) Finalize(ctx context.Context, history []ChatMessage) (*ProjectDraft, error) {
	if as.config.AssistantAPIURL == "" || as.config.AssistantAPIKey == "" {
		return nil, ErrAssistantNotConfigured
	}

	prompt := buildPrompt(history) +
		"\n\nRespond with ONLY a JSON object, no prose, with fields: " +
		`title, description, requirements, technologies (array), difficulty ` +
		`(beginner|intermediate|advanced), estimated_duration, enrollment_type ` +
		`(direct|application|hybrid), max_developers (number).`

	reply, err := as.call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	draft, err := ParseProjectDraft(reply)
	if err != nil {
		as.log.WithError(err).Debug("finalize reply was not parseable")
		return nil, err
	}

	return draft, nil
}

func (as *AssistantService) call(ctx context.Context, prompt string) (string, error) {
	var result assistantResponse

	resp, err := as.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+as.config.AssistantAPIKey).
		SetBody(assistantRequest{
			Model:  as.config.AssistantModel,
			Prompt: prompt,
		}).
		SetResult(&result).
		Post(as.config.AssistantAPIURL)

	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}

	if resp.IsError() {
		return "", statusError(resp.StatusCode())
	}

	return result.Text, nil
}

// statusError мапить коди зовнішнього API на повідомлення для користувача
func statusError(code int) error {
	switch code {
	case http.StatusBadRequest:
		return errors.New("assistant rejected the request, try rephrasing")
	case http.StatusUnauthorized:
		return errors.New("assistant API key is invalid")
	case http.StatusForbidden:
		return errors.New("assistant API access is forbidden")
	case http.StatusTooManyRequests:
		return errors.New("assistant is rate limited, try again in a minute")
	case http.StatusServiceUnavailable:
		return errors.New("assistant is temporarily unavailable")
	default:
		return fmt.Errorf("assistant returned unexpected status %d", code)
	}
}

// buildPrompt склеює транскрипт в один промпт
func buildPrompt(history []ChatMessage) string {
	var b strings.Builder
	b.WriteString("You help a non-profit organization define a software project for volunteer developers.\n\n")
	for _, msg := range history {
		if msg.Role == "assistant" {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("Organization: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// ParseProjectDraft дістає JSON з відповіді моделі (захисно зрізаючи
// markdown-огорожі) та клампить поля до дозволених значень
func ParseProjectDraft(reply string) (*ProjectDraft, error) {
	cleaned := stripCodeFences(reply)

	var draft ProjectDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, ErrDraftParse
	}

	draft.Technologies = clampTechnologies(draft.Technologies)

	switch draft.Difficulty {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
	default:
		draft.Difficulty = models.DifficultyBeginner
	}

	switch draft.EnrollmentType {
	case models.EnrollmentTypeDirect, models.EnrollmentTypeApplication, models.EnrollmentTypeHybrid:
	default:
		draft.EnrollmentType = models.EnrollmentTypeApplication
	}

	if draft.MaxDevelopers < 1 {
		draft.MaxDevelopers = 1
	}
	if draft.MaxDevelopers > 20 {
		draft.MaxDevelopers = 20
	}

	return &draft, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Зрізаємо першу строку з ```json та фінальну огорожу
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	// Модель іноді додає прозу навколо об'єкта - беремо зовнішні дужки
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}

	return strings.TrimSpace(s)
}

func clampTechnologies(suggested []string) []string {
	allowed := make(map[string]string, len(AllowedTechnologies))
	for _, t := range AllowedTechnologies {
		allowed[strings.ToLower(t)] = t
	}

	var result []string
	seen := make(map[string]bool)
	for _, t := range suggested {
		canonical, ok := allowed[strings.ToLower(strings.TrimSpace(t))]
		if ok && !seen[canonical] {
			seen[canonical] = true
			result = append(result, canonical)
		}
	}
	return result
}
