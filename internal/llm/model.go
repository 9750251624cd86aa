// Package llm adapts langchaingo chat models to single-turn completions.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Tier selects which configured model serves a request.
type Tier int

const (
	// TierChat is the larger model used for chat and theme analysis.
	TierChat Tier = iota
	// TierFast is the small model used for titles, overviews and insights.
	TierFast
)

// Request is a single system+user completion.
type Request struct {
	System      string
	User        string
	Tier        Tier
	Temperature float64
	MaxTokens   int
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Model wraps a langchaingo model with the configured chat and fast model names.
type Model struct {
	llm       llms.Model
	provider  string
	chatModel string
	fastModel string
	mc        *metrics.Collector

	// unavailable is returned from every call when the provider could not be
	// configured, typically a missing API key.
	unavailable error
}

// NewModel creates a model for cfg.LLMProvider. A missing credential does not
// fail construction; the returned model reports config.ErrMissingCredential on
// every call instead.
func NewModel(ctx context.Context, cfg config.Config, mc *metrics.Collector) (*Model, error) {
	m := &Model{
		provider:  cfg.LLMProvider,
		chatModel: cfg.LLMModel,
		fastModel: cfg.LLMFastModel,
		mc:        mc,
	}
	if m.fastModel == "" {
		m.fastModel = m.chatModel
	}

	if name := cfg.LLMCredentialName(); name != "" && cfg.LLMCredential() == "" {
		slog.Warn("language model disabled", "provider", cfg.LLMProvider, "missing", name)
		m.unavailable = fmt.Errorf("%w: %s", config.ErrMissingCredential, name)
		return m, nil
	}

	var err error
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		m.llm, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		m.llm, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderOllama:
		m.llm, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		m.llm, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return m, nil
}

// NewModelFromLLM wraps an existing langchaingo model.
func NewModelFromLLM(l llms.Model, provider, chatModel, fastModel string, mc *metrics.Collector) *Model {
	return &Model{llm: l, provider: provider, chatModel: chatModel, fastModel: fastModel, mc: mc}
}

// Provider returns the configured provider name.
func (m *Model) Provider() string { return m.provider }

// ModelName returns the model name serving tier.
func (m *Model) ModelName(tier Tier) string {
	if tier == TierFast {
		return m.fastModel
	}
	return m.chatModel
}

// Complete runs one completion and returns the untrimmed text of the first
// choice.
func (m *Model) Complete(ctx context.Context, req Request) (string, error) {
	if m.unavailable != nil {
		return "", m.unavailable
	}

	modelName := m.ModelName(req.Tier)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User),
	}
	opts := []llms.CallOption{
		llms.WithModel(modelName),
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, messages, opts...)
	duration := time.Since(start)

	if err != nil {
		m.mc.RecordResult(metrics.OpLLMGenerate, duration, err)
		slog.Warn("completion failed", "provider", m.provider, "model", modelName,
			"duration_ms", duration.Milliseconds(), "error", err)
		return "", &ProviderError{Provider: m.provider, Model: modelName, Err: wrapFatalError(err)}
	}
	if len(resp.Choices) == 0 {
		m.mc.RecordResult(metrics.OpLLMGenerate, duration, errNoChoices)
		return "", &ProviderError{Provider: m.provider, Model: modelName, Err: errNoChoices}
	}

	choice := resp.Choices[0]
	in, out := tokenUsage(choice.GenerationInfo)
	m.mc.RecordLLMUsage(metrics.OpLLMGenerate, duration, in, out)
	slog.Debug("completion complete", "provider", m.provider, "model", modelName,
		"duration_ms", duration.Milliseconds(), "input_tokens", in, "output_tokens", out)

	return choice.Content, nil
}

var errNoChoices = fmt.Errorf("no response choices")

// tokenUsage reads prompt and completion token counts. OpenAI and Ollama
// report PromptTokens/CompletionTokens, Anthropic InputTokens/OutputTokens.
func tokenUsage(info map[string]any) (in, out int64) {
	in = firstInt(info, "PromptTokens", "InputTokens")
	out = firstInt(info, "CompletionTokens", "OutputTokens")
	return in, out
}

func firstInt(info map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
