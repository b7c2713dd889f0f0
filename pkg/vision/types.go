package vision

import "context"

// Input contains the evidence handed to the vision model for verification.
type Input struct {
	ImageData   []byte
	TaskType    string
	Description string
}

// Result is the structured verdict mined from the vision model's reply.
type Result struct {
	Confidence float64
	Feedback   string
	Raw        map[string]interface{}
}

// Analyzer describes a vision model capable of verifying photo evidence.
type Analyzer interface {
	Analyze(ctx context.Context, input Input) (Result, error)
}
