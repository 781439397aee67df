package ai

import "github.com/modfin/bellman/models"

// Span is the structured output requested from the model when extracting an
// answer from a passage.
type Span struct {
	Answer          string          `json:"answer" json-description:"The exact text copied from the passage that answers the question. Empty when the passage does not contain an answer"`
	ConfidenceScore float32         `json:"confidence_score" json-minimum:"0.0" json-maximum:"1.0" json-description:"a confidence score between [0.0, 1.0] that denotes how certain it is that the answer is supported by the passage. Use 0 when the passage does not answer the question"`
	Metadata        models.Metadata `json:"-"`
}

type translation struct {
	Text string `json:"text" json-description:"The translated text"`
}
