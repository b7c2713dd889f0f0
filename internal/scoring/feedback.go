package scoring

// buildFeedback assembles the student-facing feedback string: a confidence
// bucket, keyword-coverage commentary, image commentary, and the per-type tip.
func buildFeedback(taskType string, confidence float64, matches, totalKeywords int, hasImage bool) string {
	feedback := confidenceBucket(confidence)

	if totalKeywords > 0 {
		feedback += " " + keywordCommentary(float64(matches)/float64(totalKeywords))
	}

	if hasImage {
		feedback += " Thank you for providing photo evidence."
	} else {
		feedback += " Adding a photo would strengthen your submission."
	}

	if tip, ok := taskTips[taskType]; ok {
		feedback += tip
	}

	return feedback
}

func confidenceBucket(confidence float64) string {
	switch {
	case confidence > 0.9:
		return "Excellent work! Your evidence clearly demonstrates completion of this environmental task."
	case confidence > 0.7:
		return "Good job! Your submission shows solid evidence of task completion."
	case confidence > 0.5:
		return "Your submission has been reviewed. The evidence suggests task completion."
	default:
		return "Your submission needs more detail or clearer evidence to verify task completion."
	}
}

func keywordCommentary(ratio float64) string {
	switch {
	case ratio > 0.75:
		return "Your description includes excellent relevant details."
	case ratio > 0.5:
		return "Your description covers the key aspects well."
	case ratio > 0:
		return "Consider adding more specific details about your environmental action."
	default:
		return "Try to include more specific terms related to the task in your description."
	}
}
