// Package gemini narrates turns with the Gemini API.
package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

//go:embed prompts/system.txt
var systemPrompt string

//go:embed prompts/turn.txt
var turnPrompt string

var turnTemplate = template.Must(template.New("turn").Parse(turnPrompt))

const (
	DefaultModel     = "gemini-2.5-flash"
	DefaultRetries   = 5
	DefaultBaseDelay = time.Second
	maxJitter        = 500 * time.Millisecond
)

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey    string
	Model     string
	Retries   int
	BaseDelay time.Duration
	Logger    *slog.Logger
}

type Oracle struct {
	client    *genai.Client
	model     generator
	retries   int
	baseDelay time.Duration
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error

	mu  sync.Mutex
	rng *rand.Rand
}

func New(ctx context.Context, cfg Config) (*Oracle, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}
	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()
	model.SetTemperature(1.0)

	o := newOracle(model, cfg)
	o.client = client
	return o, nil
}

func newOracle(model generator, cfg Config) *Oracle {
	o := &Oracle{
		model:     model,
		retries:   cfg.Retries,
		baseDelay: cfg.BaseDelay,
		logger:    cfg.Logger,
		sleep:     sleepCtx,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if o.retries < 0 {
		o.retries = 0
	}
	if o.baseDelay <= 0 {
		o.baseDelay = DefaultBaseDelay
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func (o *Oracle) Close() error {
	if o.client == nil {
		return nil
	}
	return o.client.Close()
}

func (o *Oracle) Narrate(ctx context.Context, req sim.NarrativeRequest) (sim.NarrativeDelta, error) {
	prompt, err := renderTurn(req)
	if err != nil {
		return sim.NarrativeDelta{}, fmt.Errorf("%w: render prompt: %v", ports.ErrOracleUnavailable, err)
	}

	var text string
	for attempt := 0; ; attempt++ {
		text, err = o.generate(ctx, prompt)
		if err == nil {
			break
		}
		retryable, quota := classify(err)
		if !retryable || attempt >= o.retries || ctx.Err() != nil {
			if quota {
				return sim.NarrativeDelta{}, fmt.Errorf("%w: %v", ports.ErrOracleQuota, err)
			}
			return sim.NarrativeDelta{}, fmt.Errorf("%w: %v", ports.ErrOracleUnavailable, err)
		}
		delay := o.backoff(attempt)
		o.logger.Warn("gemini call failed, retrying",
			"session_id", req.SessionID,
			"attempt", attempt+1,
			"quota", quota,
			"delay_ms", delay.Milliseconds(),
			"err", err)
		if err := o.sleep(ctx, delay); err != nil {
			return sim.NarrativeDelta{}, fmt.Errorf("%w: %v", ports.ErrOracleUnavailable, err)
		}
	}

	delta, err := parseDelta(text)
	if err != nil {
		return sim.NarrativeDelta{}, fmt.Errorf("%w: %v", ports.ErrOracleUnavailable, err)
	}
	return delta, nil
}

func (o *Oracle) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}

// backoff is base*2^attempt plus up to 500ms of jitter.
func (o *Oracle) backoff(attempt int) time.Duration {
	o.mu.Lock()
	jitter := time.Duration(o.rng.Int63n(int64(maxJitter)))
	o.mu.Unlock()
	return o.baseDelay*time.Duration(1<<attempt) + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type turnData struct {
	Header   string
	Stats    sim.PlayerStats
	Kingdom  sim.Kingdom
	Factions string
	Tribe    string
	History  []historyLine
	Combat   bool
}

type historyLine struct {
	Speaker string
	Text    string
}

func historyLines(messages []sim.Message) []historyLine {
	lines := make([]historyLine, 0, len(messages))
	for _, m := range messages {
		speaker := "Player"
		if m.Sender == sim.SenderGM {
			speaker = "Great Sage"
		}
		lines = append(lines, historyLine{Speaker: speaker, Text: m.Text})
	}
	return lines
}

func renderTurn(req sim.NarrativeRequest) (string, error) {
	factions, err := json.Marshal(nonNil(req.Kingdom.Factions))
	if err != nil {
		return "", err
	}
	tribe, err := json.Marshal(nonNil(req.Tribe))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = turnTemplate.Execute(&buf, turnData{
		Header:   req.Prompt(),
		Stats:    req.Stats,
		Kingdom:  req.Kingdom,
		Factions: string(factions),
		Tribe:    string(tribe),
		History:  historyLines(req.History),
		Combat:   req.Context.Combat(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func parseDelta(text string) (sim.NarrativeDelta, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if err := checkRequired([]byte(clean)); err != nil {
		return sim.NarrativeDelta{}, fmt.Errorf("incomplete turn JSON: %v", err)
	}
	var d sim.NarrativeDelta
	if err := json.Unmarshal([]byte(clean), &d); err != nil {
		return sim.NarrativeDelta{}, fmt.Errorf("failed to parse turn JSON: %v", err)
	}
	if d.Narrative == "" {
		return sim.NarrativeDelta{}, errors.New("empty narrative from Gemini")
	}
	return d, nil
}
