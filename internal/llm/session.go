package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ollama/ollama/api"

	"github.com/autofeedr/autofeedr/internal/config"
)

// Provider names accepted by NewSession.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// UsageFunc receives a usage report after every successful generation.
type UsageFunc func(operation string, promptChars, outputChars int)

// Session is a configured handle to one model provider. It owns retries,
// per-call timeouts, and usage reporting so callers only deal with
// prompt-in/text-out.
type Session struct {
	cfg     config.LLMConfig
	rest    *resty.Client
	ollama  *api.Client
	onUsage UsageFunc
}

// package-level logger; replaced by the owning process at startup
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by internal/llm. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// NewSession builds a Session for the configured provider. For the openai
// provider the per-user apiKey is required; ollama runs keyless.
func NewSession(cfg config.LLMConfig, apiKey string, onUsage UsageFunc) (*Session, error) {
	s := &Session{cfg: cfg, onUsage: onUsage}

	switch cfg.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(apiKey) == "" {
			return nil, fmt.Errorf("openai api key not configured")
		}
		client := resty.New()
		client.SetHeader("Authorization", "Bearer "+strings.TrimSpace(apiKey))
		client.SetHeader("Content-Type", "application/json")
		client.SetTimeout(cfg.Timeout)
		client.SetBaseURL(strings.TrimRight(cfg.OpenAIBaseURL, "/"))
		s.rest = client
	case ProviderOllama:
		u, err := url.ParseRequestURI(cfg.OllamaBaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base url: %w", err)
		}
		s.ollama = api.NewClient(u, &http.Client{Timeout: cfg.Timeout})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	logger.Info("llm: session created",
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout))
	return s, nil
}

// Model returns the configured model name.
func (s *Session) Model() string {
	return s.cfg.Model
}

// Generate sends a prompt and returns the model text. It retries transient
// failures with linear backoff and treats an empty response as an error.
// The operation tag flows into logs and usage reports.
func (s *Session) Generate(ctx context.Context, prompt, operation string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.cfg.Backoff * time.Duration(attempt)):
			}
		}

		ctxReq, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		start := time.Now()
		text, err := s.generateOnce(ctxReq, prompt)
		cancel()

		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("empty response from %s", s.cfg.Provider)
		}
		if err == nil {
			logger.Debug("llm: generate ok",
				slog.String("operation", operation),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()))
			if s.onUsage != nil {
				s.onUsage(operation, len(prompt), len(text))
			}
			return strings.TrimSpace(text), nil
		}

		lastErr = err
		logger.Warn("llm: generate attempt failed",
			slog.String("operation", operation),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}

	return "", fmt.Errorf("generate %s failed after retries: %w", operation, lastErr)
}

func (s *Session) generateOnce(ctx context.Context, prompt string) (string, error) {
	if s.ollama != nil {
		return s.generateOllama(ctx, prompt)
	}
	return s.generateOpenAI(ctx, prompt)
}

type openAIRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (s *Session) generateOpenAI(ctx context.Context, prompt string) (string, error) {
	var resp openAIResponse
	httpResp, err := s.rest.R().
		SetContext(ctx).
		SetBody(openAIRequest{Model: s.cfg.Model, Input: prompt}).
		SetResult(&resp).
		Post("/responses")
	if err != nil {
		return "", fmt.Errorf("call openai api: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("openai HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("openai HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai api error: %s", resp.Error.Message)
	}

	if text := strings.TrimSpace(resp.OutputText); text != "" {
		return text, nil
	}

	// Some OpenAI-compatible servers omit output_text and only fill the
	// structured output list.
	var parts []string
	for _, item := range resp.Output {
		for _, content := range item.Content {
			if t := strings.TrimSpace(content.Text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (s *Session) generateOllama(ctx context.Context, prompt string) (string, error) {
	var out strings.Builder
	req := &api.GenerateRequest{Model: s.cfg.Model, Prompt: prompt}
	err := s.ollama.Generate(ctx, req, func(r api.GenerateResponse) error {
		out.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("call ollama api: %w", err)
	}
	return out.String(), nil
}
