// Package scoring implements the deterministic evidence scorer. The score is
// a pure function of the submission plus one optional call to an external
// image analyzer; analyzer failures degrade the score, they never fail it.
package scoring

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/econova/econova-api/internal/observability"
)

// DefaultThreshold is the confidence required for automatic approval.
const DefaultThreshold = 0.7

const (
	baseConfidence    = 0.5
	keywordBonus      = 0.05
	lengthBonus       = 0.10
	lengthPenalty     = 0.10
	imageFallbackBump = 0.10
	longDescription   = 100
	shortDescription  = 30
)

// AnalyzerInput carries the evidence handed to the external analyzer.
type AnalyzerInput struct {
	ImageData   []byte
	TaskType    string
	Description string
}

// AnalyzerResult is the external analyzer's verdict.
type AnalyzerResult struct {
	Confidence float64
	Feedback   string
}

// Analyzer is the optional external evidence-analysis collaborator.
type Analyzer interface {
	Analyze(ctx context.Context, input AnalyzerInput) (AnalyzerResult, error)
}

// Input is one submission to score.
type Input struct {
	TaskType    string
	Description string
	Image       []byte
}

// Result is the scoring verdict.
type Result struct {
	Confidence      float64
	Passed          bool
	Feedback        string
	KeywordMatches  int
	AnalyzerApplied bool
}

// Scorer computes confidence scores for task submissions.
type Scorer struct {
	analyzer  Analyzer
	threshold float64
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewScorer builds a scorer. The analyzer may be nil; submissions with images
// then receive the flat evidence bump instead of an analyzer blend.
func NewScorer(analyzer Analyzer, threshold float64, logger zerolog.Logger) *Scorer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	return &Scorer{
		analyzer:  analyzer,
		threshold: threshold,
		logger:    logger.With().Str("component", "scorer").Logger(),
		tracer:    otel.Tracer("github.com/econova/econova-api/internal/scoring"),
	}
}

// Threshold returns the configured approval threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score computes the confidence, verdict, and feedback for a submission.
// It always returns a result; external analyzer errors are absorbed.
func (s *Scorer) Score(ctx context.Context, input Input) Result {
	ctx, span := s.tracer.Start(ctx, "scoring.score", trace.WithAttributes(
		attribute.String("task_type", input.TaskType),
		attribute.Bool("has_image", len(input.Image) > 0),
	))
	defer span.End()

	description := strings.ToLower(input.Description)
	taskType := strings.ToLower(strings.TrimSpace(input.TaskType))

	confidence := baseConfidence

	keywords := taskKeywords[taskType]
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(description, keyword) {
			matches++
			confidence += keywordBonus
		}
	}

	switch {
	case len(description) > longDescription:
		confidence += lengthBonus
	case len(description) < shortDescription:
		confidence -= lengthPenalty
	}

	analyzerFeedback := ""
	analyzerApplied := false
	if len(input.Image) > 0 {
		if s.analyzer != nil {
			analysis, err := s.analyzer.Analyze(ctx, AnalyzerInput{
				ImageData:   input.Image,
				TaskType:    taskType,
				Description: description,
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("task_type", taskType).Msg("evidence analysis failed, crediting image attempt")
				observability.AnalyzerFailures().Inc()
				confidence += imageFallbackBump
			} else {
				confidence = (confidence + analysis.Confidence) / 2
				analyzerFeedback = analysis.Feedback
				analyzerApplied = true
			}
		} else {
			confidence += imageFallbackBump
		}
	}

	confidence = clamp(confidence)
	passed := confidence >= s.threshold

	verdict := "rejected"
	if passed {
		verdict = "approved"
	}
	observability.SubmissionsScored().WithLabelValues(taskType, verdict).Inc()
	observability.ScoreDistribution().Observe(confidence)

	span.SetAttributes(
		attribute.Float64("confidence", confidence),
		attribute.Bool("passed", passed),
	)

	feedback := buildFeedback(taskType, confidence, matches, len(keywords), len(input.Image) > 0)
	if analyzerFeedback != "" {
		feedback += " " + analyzerFeedback
	}

	return Result{
		Confidence:      confidence,
		Passed:          passed,
		Feedback:        feedback,
		KeywordMatches:  matches,
		AnalyzerApplied: analyzerApplied,
	}
}

func clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
