package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	visionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "econova",
		Subsystem: "vision",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of vision analysis requests",
	}, []string{"model"})

	visionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "econova",
		Subsystem: "vision",
		Name:      "analysis_failures_total",
		Help:      "Number of vision analysis failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI vision analyzer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAnalyzer implements Analyzer against the OpenAI chat completion API.
type OpenAIAnalyzer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAnalyzer builds a new analyzer using the provided configuration.
func NewOpenAIAnalyzer(cfg OpenAIConfig) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 256
	}

	tracer := otel.Tracer("github.com/econova/econova-api/pkg/vision/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIAnalyzer{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Analyze sends the evidence image to the vision model and mines a confidence
// score from the textual reply.
func (a *OpenAIAnalyzer) Analyze(parent context.Context, input Input) (Result, error) {
	ctx, span := a.tracer.Start(parent, "openai.analyze", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.String("task_type", input.TaskType),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analyzerSystemPrompt(),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: buildUserPrompt(input),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI(input.ImageData),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	visionDuration.WithLabelValues(a.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		visionFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("openai analyze: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		visionFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	confidence := mineConfidence(content)
	span.SetAttributes(attribute.Float64("confidence", confidence))

	return Result{
		Confidence: confidence,
		Feedback:   firstLines(content, 3),
		Raw: map[string]interface{}{
			"usage": resp.Usage,
		},
	}, nil
}

func analyzerSystemPrompt() string {
	return "You verify photo evidence for environmental tasks. Describe what the image shows, then state how well it matches" +
		" the claimed task using one of: strong evidence, good evidence, some evidence, little evidence, no evidence."
}

func buildUserPrompt(input Input) string {
	builder := strings.Builder{}
	builder.WriteString("Task type: ")
	builder.WriteString(input.TaskType)
	builder.WriteString("\nStudent's description: ")
	builder.WriteString(input.Description)
	builder.WriteString("\nDoes the attached photo support this claim?")
	return builder.String()
}

func dataURI(data []byte) string {
	mime := mimetype.Detect(data).String()
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// confidencePhrases maps reply phrases to scores, strongest first. The first
// phrase found in the reply wins.
var confidencePhrases = []struct {
	phrases []string
	score   float64
}{
	{[]string{"strong evidence", "clear match", "definitely shows"}, 0.9},
	{[]string{"good evidence", "likely shows"}, 0.8},
	{[]string{"some evidence", "possibly shows"}, 0.6},
	{[]string{"little evidence", "unlikely"}, 0.3},
	{[]string{"no evidence", "does not show"}, 0.1},
}

func mineConfidence(content string) float64 {
	lowered := strings.ToLower(content)
	for _, entry := range confidencePhrases {
		for _, phrase := range entry.phrases {
			if strings.Contains(lowered, phrase) {
				return entry.score
			}
		}
	}
	return 0.5
}

func firstLines(content string, n int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
