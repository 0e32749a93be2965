package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/atlasprep/atlasprep-api/internal/config"
	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/generation"
)

// promptTemplate asks the model for structured JSON matching responseSchema.
const promptTemplate = `You are a study assistant creating flashcards for exam preparation.

Generate up to {{.MaxCards}} flashcards from the study note below. Each card
tests one fact or concept. Respond with JSON only, no prose, in this shape:

{"cards": [{"front": "question", "back": "answer", "difficulty": "easy|medium|hard"}]}

Study note:
{{.NoteText}}`

// promptData carries the template inputs.
type promptData struct {
	NoteText string
	MaxCards int
}

// responseSchema mirrors the JSON document the model is asked to produce.
type responseSchema struct {
	Cards []cardSchema `json:"cards"`
}

type cardSchema struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	Difficulty string `json:"difficulty"`
}

const (
	defaultMaxRetries = 3
	baseRetryDelay    = 2 * time.Second
)

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger   *slog.Logger
	cfg      config.GenerationConfig
	tmpl     *template.Template
	client   *genai.Client
	maxCards int
}

// Ensure Generator implements the generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed flashcard generator.
// Returns generation.ErrInvalidConfig when the API key or model name is missing.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, logger *slog.Logger) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("flashcard").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	maxCards := cfg.MaxCardsPerNote
	if maxCards <= 0 {
		maxCards = 10
	}

	return &Generator{
		logger:   logger.With(slog.String("component", "gemini_generator")),
		cfg:      cfg,
		tmpl:     tmpl,
		client:   client,
		maxCards: maxCards,
	}, nil
}

// GenerateFlashcards implements generation.Generator.
func (g *Generator) GenerateFlashcards(
	ctx context.Context,
	noteText string,
	userID uuid.UUID,
	topic string,
) ([]*domain.Flashcard, error) {
	prompt, err := g.buildPrompt(noteText)
	if err != nil {
		return nil, err
	}

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(response, userID, topic)
}

// buildPrompt renders the prompt template for the given note text.
func (g *Generator) buildPrompt(noteText string) (string, error) {
	if strings.TrimSpace(noteText) == "" {
		return "", generation.ErrEmptyNoteText
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, promptData{NoteText: noteText, MaxCards: g.maxCards}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callWithRetry calls the Gemini API with exponential backoff and jitter.
// Permanent errors (blocked content, malformed responses) are returned
// immediately; only transport-level failures are retried.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		g.logger.InfoContext(ctx, "calling Gemini API",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", defaultMaxRetries+1))

		response, err := g.callOnce(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			g.logger.WarnContext(ctx, "permanent generation error, not retrying",
				slog.String("error", err.Error()))
			return nil, err
		}

		if attempt == defaultMaxRetries {
			break
		}

		// delay = base * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(baseRetryDelay) * math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitter)

		g.logger.InfoContext(ctx, "retrying after delay",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		generation.ErrTransientFailure, defaultMaxRetries, lastErr)
}

// callOnce performs a single API round trip and decodes the response.
func (g *Generator) callOnce(ctx context.Context, prompt string) (*responseSchema, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.cfg.ModelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	return &parsed, nil
}

// parseResponse converts the model's document into flashcard entities.
// Cards the model returned beyond the configured maximum are dropped;
// a card that fails validation invalidates the whole batch.
func (g *Generator) parseResponse(
	response *responseSchema,
	userID uuid.UUID,
	topic string,
) ([]*domain.Flashcard, error) {
	if response == nil || len(response.Cards) == 0 {
		return nil, fmt.Errorf("%w: response contains no cards", generation.ErrInvalidResponse)
	}

	raw := response.Cards
	if len(raw) > g.maxCards {
		raw = raw[:g.maxCards]
	}

	cards := make([]*domain.Flashcard, 0, len(raw))
	for i, c := range raw {
		difficulty := domain.Difficulty(strings.ToLower(strings.TrimSpace(c.Difficulty)))
		switch difficulty {
		case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		default:
			difficulty = domain.DifficultyMedium
		}

		card, err := domain.NewFlashcard(userID, topic, c.Front, c.Back, difficulty)
		if err != nil {
			return nil, fmt.Errorf("%w: card %d failed validation: %v",
				generation.ErrInvalidResponse, i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}
