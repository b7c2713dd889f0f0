package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	result AnalyzerResult
	err    error
	called bool
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ AnalyzerInput) (AnalyzerResult, error) {
	s.called = true
	return s.result, s.err
}

func newTestScorer(analyzer Analyzer) *Scorer {
	return NewScorer(analyzer, DefaultThreshold, zerolog.Nop())
}

func TestScoreKeywordAndLengthBonuses(t *testing.T) {
	scorer := newTestScorer(nil)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "recycling",
		Description: "I recycled all the plastic bottles and paper from our classroom and dropped the glass jars at the neighborhood collection point.",
	})

	require.Equal(t, 4, res.KeywordMatches)
	require.InDelta(t, 0.80, res.Confidence, 1e-9)
	require.True(t, res.Passed)
	require.False(t, res.AnalyzerApplied)
	require.Contains(t, res.Feedback, "Good job!")
	require.Contains(t, res.Feedback, "Adding a photo would strengthen your submission.")
	require.True(t, strings.HasSuffix(res.Feedback, taskTips["recycling"]))
}

func TestScoreThreeKeywordsAtThreshold(t *testing.T) {
	scorer := newTestScorer(nil)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "recycling",
		Description: "I recycled all the plastic bottles from our classroom and dropped the remaining paper at the neighborhood collection point today.",
	})

	require.Equal(t, 3, res.KeywordMatches)
	require.InDelta(t, 0.75, res.Confidence, 1e-9)
	require.True(t, res.Passed)
}

func TestScoreShortDescriptionPenalty(t *testing.T) {
	scorer := newTestScorer(nil)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "energy",
		Description: "did my chores",
	})

	require.Equal(t, 0, res.KeywordMatches)
	require.InDelta(t, 0.40, res.Confidence, 1e-9)
	require.False(t, res.Passed)
	require.Contains(t, res.Feedback, "needs more detail")
	require.Contains(t, res.Feedback, "Try to include more specific terms")
}

func TestScoreUnknownTaskTypeHasNoKeywordCommentary(t *testing.T) {
	scorer := newTestScorer(nil)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "quiz",
		Description: "a medium length answer about the environment",
	})

	require.Equal(t, 0, res.KeywordMatches)
	require.InDelta(t, 0.50, res.Confidence, 1e-9)
	require.NotContains(t, res.Feedback, "specific terms related to the task")
}

func TestScoreKeywordMatchingIsCaseInsensitive(t *testing.T) {
	scorer := newTestScorer(nil)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "water",
		Description: "Installed a low-flow SHOWER head and fixed the dripping TAP in our bathroom",
	})

	require.GreaterOrEqual(t, res.KeywordMatches, 2)
}

func TestScoreAnalyzerBlend(t *testing.T) {
	analyzer := &stubAnalyzer{result: AnalyzerResult{Confidence: 0.9, Feedback: "The image clearly shows a cleaned area."}}
	scorer := newTestScorer(analyzer)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "cleanup",
		Description: "took care of my surroundings this weekend",
		Image:       []byte{0x89, 0x50, 0x4e, 0x47},
	})

	require.True(t, analyzer.called)
	require.True(t, res.AnalyzerApplied)
	require.InDelta(t, 0.70, res.Confidence, 1e-9)
	require.True(t, res.Passed)
	require.Contains(t, res.Feedback, "Thank you for providing photo evidence.")
	require.Contains(t, res.Feedback, "The image clearly shows a cleaned area.")
}

func TestScoreAnalyzerFailureFallsBackToFlatBump(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("upstream unavailable")}
	scorer := newTestScorer(analyzer)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "cleanup",
		Description: "took care of my surroundings this weekend",
		Image:       []byte{0x89, 0x50, 0x4e, 0x47},
	})

	require.True(t, analyzer.called)
	require.False(t, res.AnalyzerApplied)
	require.InDelta(t, 0.60, res.Confidence, 1e-9)
	require.False(t, res.Passed)
}

func TestScoreNilAnalyzerStillCreditsImage(t *testing.T) {
	scorer := newTestScorer(nil)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "cleanup",
		Description: "took care of my surroundings this weekend",
		Image:       []byte{0xff, 0xd8},
	})

	require.False(t, res.AnalyzerApplied)
	require.InDelta(t, 0.60, res.Confidence, 1e-9)
}

func TestScoreClampsToOne(t *testing.T) {
	scorer := newTestScorer(nil)

	res := scorer.Score(context.Background(), Input{
		TaskType:    "recycling",
		Description: "We sorted the waste into every bin: recycled plastic, paper, and glass went into a dedicated separation container at school, which keeps the whole street tidier.",
		Image:       []byte{0xff, 0xd8},
	})

	require.Equal(t, 8, res.KeywordMatches)
	require.InDelta(t, 1.0, res.Confidence, 1e-9)
	require.True(t, res.Passed)
	require.Contains(t, res.Feedback, "Excellent work!")
	require.Contains(t, res.Feedback, "excellent relevant details")
}

func TestNewScorerRejectsInvalidThreshold(t *testing.T) {
	scorer := NewScorer(nil, -1, zerolog.Nop())
	require.InDelta(t, DefaultThreshold, scorer.Threshold(), 1e-9)

	scorer = NewScorer(nil, 1.5, zerolog.Nop())
	require.InDelta(t, DefaultThreshold, scorer.Threshold(), 1e-9)
}
